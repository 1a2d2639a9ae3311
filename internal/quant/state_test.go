package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/tensor"
)

func TestStateRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{
			name:   "none",
			params: Params{Scheme: SchemeNone, Type: tensor.Uint8},
		},
		{
			name:   "per tensor",
			params: Params{Scheme: PerTensorAffine, Type: tensor.Int8, Scale: []float64{0.02}, ZeroPoint: []int64{-5}},
		},
		{
			name: "per channel",
			params: Params{Scheme: PerChannelAffine, Type: tensor.Uint8,
				Scale: []float64{0.1, 0.2, 0.3}, ZeroPoint: []int64{1, 2, 3}, Axis: 1},
		},
		{
			name: "per channel float params",
			params: Params{Scheme: PerChannelAffineFloatParams, Type: tensor.Int8,
				Scale: []float64{0.5, 0.25}, ZeroPoint: []int64{0, 0}, Axis: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := make(map[string]*tensor.RawTensor)
			SaveState(sd, "fc1.weight_", tt.params)

			loaded, consumed, err := LoadState(sd, "fc1.weight_")
			require.NoError(t, err)
			assert.True(t, loaded.Equal(tt.params), "loaded %+v != saved %+v", loaded, tt.params)

			// Every written key was consumed, nothing else.
			assert.Len(t, consumed, len(sd))
			for _, key := range consumed {
				assert.Contains(t, sd, key)
			}
		})
	}
}

func TestSaveStateKeySets(t *testing.T) {
	keys := func(p Params) map[string]bool {
		sd := make(map[string]*tensor.RawTensor)
		SaveState(sd, "w_", p)
		set := make(map[string]bool, len(sd))
		for k := range sd {
			set[k] = true
		}
		return set
	}

	none := keys(Params{Scheme: SchemeNone, Type: tensor.Uint8})
	assert.Equal(t, map[string]bool{"w_qscheme": true, "w_dtype": true}, none)

	perTensor := keys(Params{Scheme: PerTensorAffine, Type: tensor.Uint8,
		Scale: []float64{1}, ZeroPoint: []int64{0}})
	assert.Equal(t, map[string]bool{
		"w_qscheme": true, "w_dtype": true, "w_scale": true, "w_zero_point": true,
	}, perTensor)

	// Axis is persisted for both per-channel variants.
	for _, scheme := range []Scheme{PerChannelAffine, PerChannelAffineFloatParams} {
		perChannel := keys(Params{Scheme: scheme, Type: tensor.Uint8,
			Scale: []float64{1, 1}, ZeroPoint: []int64{0, 0}, Axis: 1})
		assert.Equal(t, map[string]bool{
			"w_qscheme": true, "w_dtype": true, "w_scale": true, "w_zero_point": true, "w_axis": true,
		}, perChannel, "scheme %s", scheme)
	}
}

func TestLoadStateMissingKeys(t *testing.T) {
	full := make(map[string]*tensor.RawTensor)
	SaveState(full, "w_", Params{Scheme: PerChannelAffine, Type: tensor.Uint8,
		Scale: []float64{1, 1}, ZeroPoint: []int64{0, 0}, Axis: 0})

	for missing := range full {
		sd := make(map[string]*tensor.RawTensor, len(full)-1)
		for k, v := range full {
			if k != missing {
				sd[k] = v
			}
		}
		_, _, err := LoadState(sd, "w_")
		require.ErrorIs(t, err, ErrMissingState, "without %q", missing)
	}
}

func TestLoadStateRejectsUnknownScheme(t *testing.T) {
	sd := map[string]*tensor.RawTensor{
		"w_qscheme": tensor.ScalarInt64(99),
		"w_dtype":   tensor.ScalarInt64(int64(tensor.Uint8)),
	}
	_, _, err := LoadState(sd, "w_")
	require.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestLoadStateRejectsUnknownDType(t *testing.T) {
	sd := map[string]*tensor.RawTensor{
		"w_qscheme": tensor.ScalarInt64(int64(PerTensorAffine)),
		"w_dtype":   tensor.ScalarInt64(99),
	}
	_, _, err := LoadState(sd, "w_")
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLoadStateRejectsCorruptTensors(t *testing.T) {
	// Scheme persisted with the wrong storage type: error, not panic.
	sd := map[string]*tensor.RawTensor{
		"w_qscheme": tensor.ScalarFloat64(1),
	}
	_, _, err := LoadState(sd, "w_")
	require.Error(t, err)

	// Scale must be a float64 vector.
	sd = make(map[string]*tensor.RawTensor)
	SaveState(sd, "w_", Params{Scheme: PerTensorAffine, Type: tensor.Uint8,
		Scale: []float64{1}, ZeroPoint: []int64{0}})
	sd["w_scale"] = tensor.ScalarInt64(1)
	_, _, err = LoadState(sd, "w_")
	require.Error(t, err)
}

func TestWeightQuantizerDefaults(t *testing.T) {
	w, err := tensor.FromFloat32([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)

	wq, err := NewWeightQuantizer("weight", w, nil)
	require.NoError(t, err)
	assert.True(t, wq.Params().Equal(Default()))
}

func TestWeightQuantizerStateDictRoundTrip(t *testing.T) {
	w, err := tensor.FromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)

	params := Params{Scheme: PerChannelAffine, Type: tensor.Int8,
		Scale: []float64{0.5, 0.25}, ZeroPoint: []int64{1, -1}, Axis: 0}
	wq, err := NewWeightQuantizer("weight", w, &params)
	require.NoError(t, err)

	sd := wq.StateDict()

	// Fresh quantizer with default params picks everything up from the dict.
	w2, err := tensor.FromFloat32(make([]float32, 4), tensor.Shape{2, 2})
	require.NoError(t, err)
	wq2, err := NewWeightQuantizer("weight", w2, nil)
	require.NoError(t, err)

	require.NoError(t, wq2.LoadStateDict(sd))
	assert.True(t, wq2.Params().Equal(params))
	assert.Equal(t, w.AsFloat32(), wq2.WeightTensor().AsFloat32())
	assert.Empty(t, sd, "all keys consumed")
}

func TestWeightQuantizerLoadKeepsStateOnError(t *testing.T) {
	w, err := tensor.FromFloat32([]float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	wq, err := NewWeightQuantizer("weight", w, nil)
	require.NoError(t, err)

	before := wq.Params()

	// Fragment missing the zero point: load fails and nothing changes.
	sd := wq.StateDict()
	delete(sd, "weight_zero_point")
	err = wq.LoadStateDict(sd)
	require.ErrorIs(t, err, ErrMissingState)
	assert.True(t, wq.Params().Equal(before))
	assert.Equal(t, []float32{1, 2}, wq.WeightTensor().AsFloat32())
}

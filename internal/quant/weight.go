package quant

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// WeightQuantizer owns one float weight tensor and its quantization
// parameters. It is the module-facing entry point of this package: modules
// hold a WeightQuantizer per quantized weight and route state-dict traffic
// through it.
//
// The parameters are fixed at construction and change only through
// LoadStateDict, which replaces them atomically.
type WeightQuantizer struct {
	name   string
	weight *tensor.RawTensor
	params Params
}

// NewWeightQuantizer creates a quantizer for the given weight.
//
// A nil params selects the framework default (per-tensor affine, uint8,
// scale 1.0, zero point 0). Non-default params are validated against the
// weight shape up front.
func NewWeightQuantizer(name string, weight *tensor.RawTensor, params *Params) (*WeightQuantizer, error) {
	p := Default()
	if params != nil {
		p = params.Clone()
	}
	if err := p.Validate(weight.Shape()); err != nil {
		return nil, fmt.Errorf("weight %q: %w", name, err)
	}
	return &WeightQuantizer{
		name:   name,
		weight: weight,
		params: p,
	}, nil
}

// Name returns the weight name used for state dict keys.
func (w *WeightQuantizer) Name() string {
	return w.name
}

// Params returns a copy of the current quantization parameters.
func (w *WeightQuantizer) Params() Params {
	return w.params.Clone()
}

// WeightTensor returns the owned float weight.
func (w *WeightQuantizer) WeightTensor() *tensor.RawTensor {
	return w.weight
}

// QuantizedWeight returns a quantized copy of the weight.
func (w *WeightQuantizer) QuantizedWeight() (*tensor.RawTensor, error) {
	return Quantize(w.weight, w.params)
}

// Weight returns the fake-quantized view of the weight: the float tensor a
// quantized model would effectively compute with. With SchemeNone this is
// the original weight itself.
func (w *WeightQuantizer) Weight() (*tensor.RawTensor, error) {
	return FakeQuantize(w.weight, w.params)
}

// StateDict returns the weight and its quantization parameters as a flat
// state dict fragment: "<name>" for the weight and "<name>_<suffix>" for
// each parameter field.
func (w *WeightQuantizer) StateDict() map[string]*tensor.RawTensor {
	sd := map[string]*tensor.RawTensor{
		w.name: w.weight.Clone(),
	}
	SaveState(sd, w.name+"_", w.params)
	return sd
}

// LoadStateDict installs the weight and parameters from a state dict
// fragment produced by StateDict. Consumed quantization keys are removed
// from the map, mirroring how containers strip handled entries before
// passing the rest on. The live parameters are replaced only after the whole
// fragment parses.
func (w *WeightQuantizer) LoadStateDict(sd map[string]*tensor.RawTensor) error {
	weight, ok := sd[w.name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingState, w.name)
	}
	if !weight.Shape().Equal(w.weight.Shape()) {
		return fmt.Errorf("weight %q: shape mismatch: %v != %v", w.name, weight.Shape(), w.weight.Shape())
	}

	params, consumed, err := LoadState(sd, w.name+"_")
	if err != nil {
		return fmt.Errorf("weight %q: %w", w.name, err)
	}
	if err := params.Validate(weight.Shape()); err != nil {
		return fmt.Errorf("weight %q: %w", w.name, err)
	}

	w.weight = weight.Clone()
	w.params = params
	delete(sd, w.name)
	for _, key := range consumed {
		delete(sd, key)
	}
	return nil
}

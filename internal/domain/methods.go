package domain

// MethodSpec is the implementation plan extracted from a paper's Methods
// section. Fields the paper omits are filled with CIFAR-10 / Wide-ResNet
// defaults so the scaffold templates always render.
type MethodSpec struct {
	Dataset    DatasetSpec    `json:"dataset"`
	Preprocess PreprocessSpec `json:"preprocess"`
	Model      ModelSpec      `json:"model"`
	Train      TrainSpec      `json:"train"`
	Citations  []Citation     `json:"citations"`
}

// DatasetSpec describes the dataset the paper trains on
type DatasetSpec struct {
	Name       string `json:"name"`
	NumClasses int    `json:"num_classes"`
	InputSize  []int  `json:"input_size"` // [C, H, W]
}

// PreprocessSpec describes normalization and augmentation
type PreprocessSpec struct {
	Normalize NormalizeSpec `json:"normalize"`
	Augment   AugmentSpec   `json:"augment"`
}

// NormalizeSpec holds per-channel normalization constants
type NormalizeSpec struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// AugmentSpec holds the augmentation switches the paper reports
type AugmentSpec struct {
	RandomCrop bool `json:"random_crop"`
	Padding    int  `json:"padding"`
	RandomFlip bool `json:"random_flip"`
	Cutout     bool `json:"cutout"`
}

// ModelSpec describes the model family and its hyperparameters
type ModelSpec struct {
	Family      string  `json:"family"`
	Depth       int     `json:"depth"`
	WidenFactor int     `json:"widen_factor"`
	Dropout     float64 `json:"dropout"`
}

// TrainSpec describes the training recipe
type TrainSpec struct {
	Epochs      int     `json:"epochs"`
	BatchSize   int     `json:"batch_size"`
	Optimizer   string  `json:"optimizer"`
	LR          float64 `json:"lr"`
	Momentum    float64 `json:"momentum"`
	WeightDecay float64 `json:"weight_decay"`
	Scheduler   string  `json:"scheduler"`
}

// Citation is a short paper excerpt supporting an extracted decision
type Citation struct {
	Section string `json:"section"`
	Quote   string `json:"quote"`
}

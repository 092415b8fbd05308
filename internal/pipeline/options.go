package pipeline

// Options provides flexible configuration for sheet processing
type Options struct {
	// Processing toggles
	AutoEnhance       bool
	SkipNormalization bool
	SkipSetDetection  bool
	SkipEvaluation    bool

	// Detection thresholds
	FillThreshold       float64
	QualityThreshold    float64
	ConfidenceThreshold float64

	// Set override, bypasses indicator detection when non-empty
	ForcedSet string

	// Performance options
	UseWorkerPool bool
	MaxWorkers    int
}

// DefaultOptions returns default processing options
func DefaultOptions() Options {
	return Options{
		AutoEnhance:         true,
		SkipNormalization:   false,
		SkipSetDetection:    false,
		SkipEvaluation:      false,
		FillThreshold:       0.3,
		QualityThreshold:    0.6,
		ConfidenceThreshold: 0.7,
		UseWorkerPool:       true,
		MaxWorkers:          0, // Use default worker count
	}
}

// FastOptions returns options for quick detection-only runs
func FastOptions() Options {
	opts := DefaultOptions()
	opts.AutoEnhance = false
	opts.SkipEvaluation = true
	return opts
}

// WithoutEnhancement disables conditional image enhancement
func (opts Options) WithoutEnhancement() Options {
	opts.AutoEnhance = false
	return opts
}

// WithForcedSet pins the exam set instead of detecting it
func (opts Options) WithForcedSet(set string) Options {
	opts.ForcedSet = set
	opts.SkipSetDetection = true
	return opts
}

// WithThresholds allows setting custom detection thresholds
func (opts Options) WithThresholds(fill, quality, confidence float64) Options {
	opts.FillThreshold = fill
	opts.QualityThreshold = quality
	opts.ConfidenceThreshold = confidence
	return opts
}

// WithWorkers sets the batch worker count
func (opts Options) WithWorkers(workers int) Options {
	opts.UseWorkerPool = true
	opts.MaxWorkers = workers
	return opts
}

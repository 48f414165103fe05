package models

import (
	"context"
	"time"
)

// Trainer is the caller-supplied trainable model contract. The engine is
// agnostic to what kind of model sits behind it.
type Trainer interface {
	Fit(ctx context.Context, train Dataset) (Model, error)
}

// Model predicts over a test slice, returning one prediction per record.
type Model interface {
	Predict(ctx context.Context, test Dataset) ([]Prediction, error)
}

// Loader returns a labeled dataset for an instrument and date range.
type Loader interface {
	Load(ctx context.Context, instrument string, from, to time.Time) (Dataset, error)
}

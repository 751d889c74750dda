// Package classifier implements the catalog of classification
// algorithms the training run compares: a tree ensemble, gradient
// boosting, a linear model, a kernel machine, a distance-based model
// and two optional boosted-tree variants. All of them are deterministic
// for a fixed seed and train on the dense feature vectors produced by
// the feature transform.
package classifier

import "encoding/gob"

// Classifier predicts one integer label per feature row.
type Classifier interface {
	Predict(X [][]float64) ([]int, error)
}

// Trainable is a classifier that can be fit on labeled feature rows.
type Trainable interface {
	Classifier
	Fit(X [][]float64, y []int) error
}

func init() {
	// Concrete classifier types travel inside a gob-encoded pipeline
	// artifact behind the Classifier interface.
	gob.Register(&RandomForest{})
	gob.Register(&GradientBoosting{})
	gob.Register(&Logistic{})
	gob.Register(&SVM{})
	gob.Register(&KNN{})
	gob.Register(&Boosted{})
	gob.Register(&Encoded{})
}

// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import "errors"

var (
	// ErrNotFitted is returned when a scoring or transform operation is
	// attempted before the model has been fitted.
	ErrNotFitted = errors.New("recommend: model not fitted")

	// ErrNotAnalyzed is returned when clustering is requested before
	// keyword extraction has built the content feature matrix.
	ErrNotAnalyzed = errors.New("recommend: content not analyzed")

	// ErrUnknownPost is returned when a lookup references a post the
	// fitted model has never seen.
	ErrUnknownPost = errors.New("recommend: post not in model")

	// ErrNoDataProvider is returned when an operation needs the backing
	// store but none was configured.
	ErrNoDataProvider = errors.New("recommend: data provider not set")

	// ErrNoModelStore is returned when model persistence is requested but
	// no store was configured.
	ErrNoModelStore = errors.New("recommend: model store not set")

	// ErrTrainingInProgress is returned when a fit is requested while
	// another fit is still running.
	ErrTrainingInProgress = errors.New("recommend: training already in progress")
)

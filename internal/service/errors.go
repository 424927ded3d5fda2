// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	// ErrFeatureLocked is returned before any call when the cached permission
	// set does not grant the feature.
	ErrFeatureLocked = errors.New("feature is not included in your package")

	ErrEmptyFolderName  = errors.New("folder name is required")
	ErrEmptyMessage     = errors.New("message is required")
	ErrEmptyPrompt      = errors.New("prompt is required")
	ErrNothingToUpdate  = errors.New("nothing to update")
	ErrEmptyOrderID     = errors.New("order id is required")
	ErrUploadNotTracked = errors.New("upload is not tracked")
)

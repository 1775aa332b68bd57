// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package boxes

import "errors"

// ErrNotFound is returned when a box or queryset does not exist, or when a
// box is resolved before it is live.
var ErrNotFound = errors.New("box not found")

// Field messages.
const (
	MsgNameRequired          = "Name is required"
	MsgModelUnknown          = "Select a valid model"
	MsgOrderInvalid          = "Order must be - (DESC) or + (ASC)"
	MsgLimitInvalid          = "Limit must be zero or greater"
	MsgQuerySetRequired      = "Query set is required"
	MsgQuerySetMissing       = "Query set does not exist"
	MsgBothModes             = "Choose curated containers or a query set, not both"
	MsgContainerMissing      = "Container does not exist"
	MsgContainerNotPublished = "Container not published!"
	MsgContainerNotAvailable = "Container date available is greater than today!"
)

// Copyright (c) 2025 The Tracewire Authors.
// SPDX-License-Identifier: Apache-2.0

// Package model contains the span and trace types consumed by the
// wire-format encoders.
package model

// Copyright (C) 2025 beam-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package errors provides structured error handling for the Beam query
// toolkit.
//
// The package defines a categorized error system with:
//
//   - Categorized errors for each failure kind in the query subsystem
//   - Rich error context with details
//   - Standard Go error wrapping support
//   - Type-safe error checking
//
// # Error Categories
//
// Errors are organized into categories:
//
//   - TypeCompatibility: expression built from incompatible child types
//   - Translation: expression could not be compiled into an evaluator
//   - Serialization: structured data failed to serialize or re-validate
//   - Interrupted: a live query saw an ordering gap and was broken
//   - DataStore: inner store failure during load or store
//   - NotConnected: operation on a closed store, queue or publisher
//   - Validation: input validation errors
//   - Internal: internal errors
//
// # Creating Errors
//
// Use predefined errors:
//
//	err := errors.ErrTranslation.WithDetail("function", name)
//
// Or create custom errors:
//
//	err := errors.New(
//	    errors.CategoryValidation,
//	    "CUSTOM_ERROR",
//	    "custom error message",
//	)
//
// # Checking Errors
//
//	if errors.IsTypeCompatibility(err) {
//	    // reject the expression
//	}
package errors

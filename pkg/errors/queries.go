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

package errors

// Query errors
var (
	// ErrTypeCompatibility indicates an expression was constructed with
	// incompatible child types.
	ErrTypeCompatibility = &Error{
		Category: CategoryTypeCompatibility,
		Code:     "TYPE_COMPATIBILITY",
		Message:  "incompatible expression types",
	}

	// ErrTranslation indicates an expression could not be translated into
	// an evaluator.
	ErrTranslation = &Error{
		Category: CategoryTranslation,
		Code:     "EXPRESSION_TRANSLATION",
		Message:  "unable to translate expression",
	}

	// ErrSerialization indicates a serialization failure.
	ErrSerialization = &Error{
		Category: CategorySerialization,
		Code:     "SERIALIZATION",
		Message:  "serialization failed",
	}

	// ErrQueryInterrupted indicates a live query saw an ordering gap and
	// was broken.
	ErrQueryInterrupted = &Error{
		Category: CategoryInterrupted,
		Code:     "QUERY_INTERRUPTED",
		Message:  "query interrupted",
	}
)

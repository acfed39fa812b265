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

package store

import (
	"encoding/json"

	"github.com/beam-project/beamq/pkg/errors"
)

// Codec serializes payloads for external backends.
type Codec[T any] struct {
	Marshal   func(payload T) ([]byte, error)
	Unmarshal func(data []byte) (T, error)
}

// JSONCodec serializes payloads as JSON.
func JSONCodec[T any]() Codec[T] {
	return Codec[T]{
		Marshal: func(payload T) ([]byte, error) {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, errors.ErrSerialization.Wrap(err)
			}
			return data, nil
		},
		Unmarshal: func(data []byte) (T, error) {
			var payload T
			if err := json.Unmarshal(data, &payload); err != nil {
				return payload, errors.ErrSerialization.Wrap(err)
			}
			return payload, nil
		},
	}
}

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

// Package config loads and validates the configuration of a query node:
// the store backend and its wrapper layers, logging and metrics.
//
// Configuration is loaded from a YAML or JSON file, then overridden by
// BEAMQ_* environment variables, then validated:
//
//	cfg, err := config.LoadFromFile("config.yaml")
//
// # Example
//
//	store:
//	  backend: memory
//	  buffer_size: 256
//	  block_size: 1024
//	logging:
//	  level: info
//	  backend: zap
//	metrics:
//	  enabled: true
//	  address: ":9090"
package config

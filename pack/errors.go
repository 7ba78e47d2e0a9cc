// Copyright 2026 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pack

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrCorruptPack is returned when a pack stream is malformed or ends
	// before its end marker.
	ErrCorruptPack = errors.NewKind("corrupt pack: %s")

	// ErrWantNotFound is returned when a wanted object is not stored in the
	// source database.
	ErrWantNotFound = errors.NewKind("wanted object not found: %s")

	// ErrIncompatibleWantHave is returned for want and have sets that cannot
	// describe a transfer.
	ErrIncompatibleWantHave = errors.NewKind("incompatible want/have: %s")
)

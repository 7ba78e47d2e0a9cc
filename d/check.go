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

// Package d contains assertions for conditions that indicate a bug in the
// caller rather than a recoverable failure.
package d

import (
	"fmt"

	"github.com/stretchr/testify/assert"
)

// Chk panics when any of its assertions fail.
var Chk = assert.New(&panicker{})

type panicker struct {
}

func (s panicker) Errorf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// Panic panics with an error built from |format| and |args|.
func Panic(format string, args ...interface{}) {
	panic(fmt.Errorf(format, args...))
}

func PanicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

func PanicIfTrue(b bool) {
	if b {
		panic("expected false")
	}
}

func PanicIfFalse(b bool) {
	if !b {
		panic("expected true")
	}
}

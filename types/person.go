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

package types

import (
	"fmt"
	"time"
)

// Person identifies the author, committer or tagger of an object.
type Person struct {
	Name  string
	Email string
	// Timestamp is milliseconds since the unix epoch.
	Timestamp int64
	// TZOffset is the offset from UTC in minutes.
	TZOffset int32
}

// NewPerson returns a Person stamped with |t|.
func NewPerson(name, email string, t time.Time) Person {
	_, offset := t.Zone()
	return Person{
		Name:      name,
		Email:     email,
		Timestamp: t.UnixMilli(),
		TZOffset:  int32(offset / 60),
	}
}

// Time returns the Person's timestamp in its recorded zone.
func (p Person) Time() time.Time {
	loc := time.FixedZone("", int(p.TZOffset)*60)
	return time.UnixMilli(p.Timestamp).In(loc)
}

func (p Person) String() string {
	if p.Email == "" {
		return p.Name
	}
	return fmt.Sprintf("%s <%s>", p.Name, p.Email)
}

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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type GeogitSuite struct {
	suite.Suite
	dir string
}

func TestGeogit(t *testing.T) {
	suite.Run(t, &GeogitSuite{})
}

func (s *GeogitSuite) SetupTest() {
	s.dir = filepath.Join(s.T().TempDir(), "repo")
	s.mustRun("init")
}

func (s *GeogitSuite) geogitIn(dir string, args ...string) (string, string, int) {
	var out, errOut bytes.Buffer
	args = append([]string{"-C", dir, "--color=never"}, args...)
	code := run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func (s *GeogitSuite) mustRunIn(dir string, args ...string) string {
	out, errOut, code := s.geogitIn(dir, args...)
	s.Require().Equal(0, code, "geogit %v: %s", args, errOut)
	return out
}

func (s *GeogitSuite) mustRun(args ...string) string {
	return s.mustRunIn(s.dir, args...)
}

func (s *GeogitSuite) writeCSV(name string, lines ...string) string {
	path := filepath.Join(s.T().TempDir(), name)
	s.Require().NoError(os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

var idLine = regexp.MustCompile(`(?m)^id: (\S+)$`)

// fullID returns the full id of the object |rev| names.
func (s *GeogitSuite) fullID(rev string) string {
	m := idLine.FindStringSubmatch(s.mustRun("cat", rev))
	s.Require().NotNil(m)
	return m[1]
}

func (s *GeogitSuite) lines(out string) []string {
	return strings.Split(strings.TrimSpace(out), "\n")
}

// importHistory commits three imports of roads to master and leaves the
// branches v1 and v2 at the first two.
func (s *GeogitSuite) importHistory() {
	first := s.writeCSV("roads.csv", "id,name,lanes,length", "1,Main,2,10.5", "2,Oak,,3")
	out := s.mustRun("import", first, "roads", "-m", "first import")
	s.Contains(out, "Imported 2 features into roads (2 new")
	s.mustRun("branch", "v1")

	second := s.writeCSV("roads.csv", "id,name,lanes,length", "1,Main,2,10.5", "2,Elm,,3", "3,Pine,1,7")
	s.mustRun("import", second, "roads", "-m", "second import")
	s.mustRun("branch", "v2")

	rivers := s.writeCSV("rivers.csv", "id,name", "r1,Thames")
	s.mustRun("import", rivers, "water/rivers", "-m", "third import")
}

func (s *GeogitSuite) TestInitTwice() {
	_, errOut, code := s.geogitIn(s.dir, "init")
	s.Equal(1, code)
	s.Contains(errOut, "already initialized")
}

func (s *GeogitSuite) TestNotARepository() {
	_, errOut, code := s.geogitIn(s.T().TempDir(), "log")
	s.Equal(1, code)
	s.Contains(errOut, "no geogit.toml")
}

func (s *GeogitSuite) TestLog() {
	s.importHistory()

	out := s.mustRun("log")
	s.Equal(3, strings.Count(out, "commit "))
	s.Contains(out, "Author: geogit")
	s.Less(strings.Index(out, "third import"), strings.Index(out, "first import"))

	out = s.mustRun("log", "--oneline", "-n", "2")
	s.Len(s.lines(out), 2)
	s.Contains(out, "third import")
	s.NotContains(out, "first import")

	out = s.mustRun("log", "--oneline", "v1")
	s.Len(s.lines(out), 1)

	_, errOut, code := s.geogitIn(s.dir, "log", "nope")
	s.Equal(1, code)
	s.Contains(errOut, "unknown revision nope")
}

func (s *GeogitSuite) TestLsTree() {
	s.importHistory()

	s.Equal([]string{"roads", "water"}, s.paths(s.mustRun("ls-tree")))
	s.Equal([]string{"roads", "roads/1", "roads/2", "roads/3", "water", "water/rivers", "water/rivers/r1"}, s.paths(s.mustRun("ls-tree", "-r")))
	s.Equal([]string{"1", "2"}, s.paths(s.mustRun("ls-tree", "v1:roads")))
	s.Equal([]string{"roads", "water", "water/rivers"}, s.paths(s.mustRun("ls-tree", "-r", "-d")))

	_, errOut, code := s.geogitIn(s.dir, "ls-tree", "master:lakes")
	s.Equal(1, code)
	s.Contains(errOut, "path lakes not found")
}

func (s *GeogitSuite) paths(out string) []string {
	var paths []string
	for _, line := range s.lines(out) {
		fields := strings.Fields(line)
		paths = append(paths, fields[len(fields)-1])
	}
	return paths
}

func (s *GeogitSuite) TestCat() {
	s.importHistory()

	out := s.mustRun("cat", "v1")
	s.Contains(out, "type: commit")
	s.Contains(out, "message: first import")
	s.Contains(out, "parents: []")

	var featureID string
	for _, line := range s.lines(s.mustRun("ls-tree", "v1:roads")) {
		if strings.HasSuffix(line, " 1") {
			featureID = strings.Fields(line)[1]
		}
	}
	s.Require().NotEmpty(featureID)
	out = s.mustRun("cat", featureID)
	s.Contains(out, "type: feature")
	s.Contains(out, "- Main")
	s.Contains(out, "- 10.5")

	out = s.mustRun("cat", "--format=raw", featureID)
	s.Contains(out, "00000000")
}

func (s *GeogitSuite) TestDiff() {
	s.importHistory()

	out := s.mustRun("diff", "v1", "v2")
	lines := s.lines(out)
	s.Len(lines, 2)
	s.Contains(out, "M roads/2 ")
	s.Contains(out, "A roads/3 ")

	out = s.mustRun("diff", "v2", "v1")
	s.Contains(out, "D roads/3 ")

	out = s.mustRun("diff", "v1", "master", "--path", "water")
	s.Equal([]string{"A water/rivers/r1"}, s.trimIDs(out))

	out = s.mustRun("diff", "v1", "master", "--count")
	s.Contains(out, "features: 2 added, 0 removed, 1 changed")
	s.Contains(out, "trees:    2 added, 0 removed, 1 changed")

	out = s.mustRun("diff", "v1:roads", "v2:roads")
	s.Equal([]string{"M 2", "A 3"}, s.trimIDs(out))

	_, errOut, code := s.geogitIn(s.dir, "diff", "v1", "v2", "--path", "/roads")
	s.Equal(1, code)
	s.Contains(errOut, "/roads")
}

func (s *GeogitSuite) trimIDs(out string) []string {
	var res []string
	for _, line := range s.lines(out) {
		fields := strings.Fields(line)
		res = append(res, fields[0]+" "+fields[1])
	}
	return res
}

func (s *GeogitSuite) TestMergeBaseAndSparsePath() {
	s.importHistory()
	v1 := s.fullID("v1")

	feature := s.writeCSV("lakes.csv", "id,name", "l1,Ness")
	s.mustRun("branch", "feature", "v1")
	s.mustRun("import", feature, "lakes", "--branch", "feature", "-m", "lakes")

	s.Equal(v1+"\n", s.mustRun("merge-base", "master", "feature"))
	s.Equal(v1+"\n", s.mustRun("merge-base", "--all", "master", "feature"))
	s.Equal(s.fullID("v2")+"\n", s.mustRun("merge-base", "master", "v2"))

	s.Equal("false\n", s.mustRun("sparse-path", "master", "v1"))
	s.mustRun("mark-sparse", "v2")
	s.Equal("true\n", s.mustRun("sparse-path", "master", "v1"))
	s.Equal("false\n", s.mustRun("sparse-path", "feature", "v1"))
}

func (s *GeogitSuite) TestBranch() {
	s.importHistory()

	out := s.mustRun("branch")
	s.Equal([]string{"master", "v1", "v2"}, s.names(out))

	_, errOut, code := s.geogitIn(s.dir, "branch", "v1")
	s.Equal(1, code)
	s.Contains(errOut, "branch v1 already exists")

	s.mustRun("branch", "-d", "v1")
	s.Equal([]string{"master", "v2"}, s.names(s.mustRun("branch")))

	_, _, code = s.geogitIn(s.dir, "branch", "-d", "v1")
	s.Equal(1, code)
}

func (s *GeogitSuite) names(out string) []string {
	var names []string
	for _, line := range s.lines(out) {
		names = append(names, strings.Fields(line)[0])
	}
	return names
}

func (s *GeogitSuite) TestPackUnpack() {
	s.importHistory()
	master := s.fullID("master")
	dir := s.T().TempDir()

	full := filepath.Join(dir, "full.pack")
	out := s.mustRun("pack", "master", "-o", full)
	s.Contains(out, "objects to "+full)

	partial := filepath.Join(dir, "partial.pack")
	s.mustRun("pack", "master", "--have", "v2", "-o", partial)
	fullInfo, err := os.Stat(full)
	s.Require().NoError(err)
	partialInfo, err := os.Stat(partial)
	s.Require().NoError(err)
	s.Less(partialInfo.Size(), fullInfo.Size())

	other := filepath.Join(dir, "other")
	s.mustRunIn(other, "init", "--backend", "leveldb", "--compression", "none")
	out = s.mustRunIn(other, "unpack", full, "--head", master, "--branch", "master")
	s.Contains(out, "Indexed 3 commits")
	s.Equal(s.mustRun("ls-tree", "-r"), s.mustRunIn(other, "ls-tree", "-r"))
	s.Equal(s.mustRun("log", "--oneline"), s.mustRunIn(other, "log", "--oneline"))

	out = s.mustRunIn(other, "unpack", full)
	s.Contains(out, ", 0 new")

	_, errOut, code := s.geogitIn(s.dir, "pack", "master", "--have", "master", "-o", partial)
	s.Equal(1, code)
	s.Contains(errOut, "incompatible want/have")
}

func (s *GeogitSuite) TestReindex() {
	s.importHistory()
	s.Equal("Indexed 0 commits from 3 refs\n", s.mustRun("reindex"))
}

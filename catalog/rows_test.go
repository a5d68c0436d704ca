// Copyright 2025 Poiesic Systems
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

package catalog

import (
	"strings"
	"testing"

	"github.com/poiesic/prodmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `NAME,LONG_NAME
X1,Lipton Diet Green Tea (20oz)
X2,Coca-Cola Classic 12oz Can
X3,
,Sprite Lemon-Lime 2L
`

func TestReadRows_CSV(t *testing.T) {
	rows, err := ReadRows("catalog.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, Row{Name: "X1", LongName: "Lipton Diet Green Tea (20oz)"}, rows[0])
	assert.Equal(t, "X1", rows[0].ID())
	assert.Empty(t, rows[2].LongName)
	assert.Equal(t, core.IDFromContent("Sprite Lemon-Lime 2L").String(), rows[3].ID())
}

func TestReadRows_HeaderCaseAndOrder(t *testing.T) {
	rows, err := ReadRows("catalog.csv", strings.NewReader("\ufefflong_name,extra,name\nPepsi 12pk, x ,P1\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Row{Name: "P1", LongName: "Pepsi 12pk"}, rows[0])
}

func TestReadRows_MissingLongName(t *testing.T) {
	_, err := ReadRows("catalog.csv", strings.NewReader("NAME\nX1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadRows_Empty(t *testing.T) {
	_, err := ReadRows("catalog.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestReadRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"NAME", "LONG_NAME"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"X1", "Lipton Diet Green Tea (20oz)"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"X2"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ReadRows("catalog.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Lipton Diet Green Tea (20oz)", rows[0].LongName)
	assert.Equal(t, Row{Name: "X2"}, rows[1])
}

func TestReadRows_JSONL(t *testing.T) {
	data := `{"id":"X1","embedding":"Lipton Diet Green Tea (20oz)"}

{"id":"X2","embedding":"Coca-Cola Classic 12oz Can","vector":[0.1,0.2]}
`
	rows, err := ReadRows("export.jsonl", strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []Row{
		{Name: "X1", LongName: "Lipton Diet Green Tea (20oz)"},
		{Name: "X2", LongName: "Coca-Cola Classic 12oz Can"},
	}, rows)
}

func TestReadJSONL_BadLine(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("{\"id\":\"X1\"}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

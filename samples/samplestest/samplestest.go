// Package samplestest checks a sampler against the output every sampler
// prints for the seeded sample database.
package samplestest

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/coderi421/ormsample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run runs every step of s and returns the output lines of each step,
// keyed by the step title.
func Run(t *testing.T, s ormsample.Sample) map[string][]string {
	t.Helper()
	var out bytes.Buffer
	r := ormsample.NewRunner(ormsample.WithOutput(&out))
	require.NoError(t, r.RunSample(context.Background(), s))
	return sections(t, s.Name(), out.String())
}

func sections(t *testing.T, name, out string) map[string][]string {
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.NotEmpty(t, lines)
	require.Equal(t, name+" Samples", lines[0])

	res := make(map[string][]string, 9)
	var title string
	for _, line := range lines[1:] {
		if after, ok := strings.CutPrefix(line, name+": "); ok {
			title = after
			res[title] = []string{}
			continue
		}
		require.NotEmpty(t, title, "output before the first step title: %q", line)
		res[title] = append(res[title], line)
	}
	return res
}

// Verify runs s against a freshly seeded database and checks what every
// step printed. Only the number formats of the dynamic query differ
// between samplers, so that step is checked loosely.
func Verify(t *testing.T, s ormsample.Sample) {
	t.Helper()
	out := Run(t, s)
	require.Len(t, out, 9)

	simple := out["Simple query"]
	require.Len(t, simple, 15)
	assert.Equal(t, "1: AR-5381 - Adjustable Race", simple[0])
	assert.Equal(t, "970: BK-T44U-46 - Touring-2000 Blue, 46", simple[14])

	assert.Equal(t, []string{
		"1: AR-5381 - Adjustable Race",
		"966: BK-T79U-46 - Touring-1000 Blue, 46",
		"969: BK-T79U-60 - Touring-1000 Blue, 60",
		"970: BK-T44U-46 - Touring-2000 Blue, 46",
	}, out["Parameterized query"])

	manyToOne := out["Many to one (N:1)"]
	require.Len(t, manyToOne, 26)
	assert.Equal(t, []string{
		"Product: 712, CA-1098 - AWC Logo Cap",
		"   --> Subcategory: 19, Caps",
		"Product: 680, FR-R92B-58 - HL Road Frame - Black, 58",
		"   --> Subcategory: 14, Road Frames",
	}, manyToOne[:4])

	assert.Equal(t, []string{
		"1: Mountain Bikes",
		"   * Product: 775, BK-M82B-38: Mountain-100 Black, 38",
		"   * Product: 771, BK-M82S-38: Mountain-100 Silver, 38",
		"   * Product: 772, BK-M82S-42: Mountain-100 Silver, 42",
		"2: Road Bikes",
		"   * Product: 749, BK-R93R-62: Road-150 Red, 62",
		"3: Touring Bikes",
		"   * Product: 966, BK-T79U-46: Touring-1000 Blue, 46",
		"   * Product: 969, BK-T79U-60: Touring-1000 Blue, 60",
		"   * Product: 954, BK-T79Y-46: Touring-1000 Yellow, 46",
		"   * Product: 957, BK-T79Y-60: Touring-1000 Yellow, 60",
		"   * Product: 970, BK-T44U-46: Touring-2000 Blue, 46",
		"14: Road Frames",
		"   * Product: 680, FR-R92B-58: HL Road Frame - Black, 58",
		"   * Product: 706, FR-R92R-58: HL Road Frame - Red, 58",
		"19: Caps",
		"   * Product: 712, CA-1098: AWC Logo Cap",
		"21: Jerseys",
		"   * Product: 714, LJ-0192-M: Long-Sleeve Logo Jersey, M",
		"37: Tires and Tubes",
	}, out["One to many (1:N)"])

	dynamic := out["Dynamic query"]
	require.Len(t, dynamic, 10)
	assert.True(t, strings.HasSuffix(dynamic[0], " * Mountain-100 Silver, 38"), dynamic[0])
	assert.True(t, strings.HasSuffix(dynamic[9], " * HL Road Frame - Black, 58"), dynamic[9])

	assert.Equal(t, []string{
		"0 * Eric Kurjan - OrgNode: /5/1/4/, Manager: Sheela Word",
		"1 * Sheela Word - OrgNode: /5/1/, Manager: James Hamilton",
		"2 * James Hamilton - OrgNode: /5/, Manager: Ken Sanchez",
	}, out["Stored procedure"])

	// 种子数据里已经有两个 Location
	insert := out["Insert"]
	require.Len(t, insert, 1)
	assert.True(t, strings.HasPrefix(insert[0], "3 - Bad Breisig: "), insert[0])
	assert.Contains(t, insert[0], "10")

	update := out["Update"]
	require.Len(t, update, 1)
	assert.True(t, strings.HasPrefix(update[0], "3 - Bad Breisig: "), update[0])
	assert.Contains(t, update[0], "500")

	assert.Equal(t, []string{"1 record(s) deleted"}, out["Delete"])
}

// VerifyNoLocation checks that Update and Delete refuse to run in a run
// where Insert never ran.
func VerifyNoLocation(t *testing.T, s ormsample.Sample) {
	t.Helper()
	r := ormsample.NewRunner(ormsample.WithOutput(&bytes.Buffer{}))
	for _, step := range ormsample.Steps(s) {
		if step.Name != "update" && step.Name != "delete" {
			continue
		}
		ctx := r.RunStep(context.Background(), s.Name(), step)
		assert.ErrorIs(t, ctx.Err, ormsample.ErrNoLocation, step.Name)
	}
}

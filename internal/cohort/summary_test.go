package cohort

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeColumn(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   ColumnSummary
	}{
		{
			name:   "even count interpolates quartiles",
			values: []float64{16, 10, 14, 12},
			want: ColumnSummary{
				Count:  4,
				Mean:   13,
				Std:    2.581988897471611,
				Min:    10,
				Q1:     11.5,
				Median: 13,
				Q3:     14.5,
				Max:    16,
			},
		},
		{
			name:   "odd count",
			values: []float64{12, 11, 13, 10, 12},
			want: ColumnSummary{
				Count:  5,
				Mean:   11.6,
				Std:    1.1401754250991378,
				Min:    10,
				Q1:     11,
				Median: 12,
				Q3:     12,
				Max:    13,
			},
		},
		{
			name:   "constant column",
			values: []float64{1, 1, 1, 1},
			want: ColumnSummary{
				Count:  4,
				Mean:   1,
				Std:    0,
				Min:    1,
				Q1:     1,
				Median: 1,
				Q3:     1,
				Max:    1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeColumn("age", tt.values)

			assert.Equal(t, tt.want.Count, got.Count)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-12)
			assert.InDelta(t, tt.want.Std, got.Std, 1e-12)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-12)
			assert.InDelta(t, tt.want.Q1, got.Q1, 1e-12)
			assert.InDelta(t, tt.want.Median, got.Median, 1e-12)
			assert.InDelta(t, tt.want.Q3, got.Q3, 1e-12)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-12)
		})
	}
}

func TestDescribeColumn_SingletonStd(t *testing.T) {
	got := describeColumn("age", []float64{7})

	assert.Equal(t, 1, got.Count)
	assert.True(t, math.IsNaN(got.Std), "sample std of one value is undefined")
	assert.Equal(t, 7.0, got.Median)

	// encoding/json rejects NaN, so the marshaller must emit null
	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"std":null`)
}

func TestDescribe(t *testing.T) {
	students := []Student{
		{ID: 1, WonLottery: 1, Sex: 0, Age: 12, FinishedGrade: 1, UsedAid: 1},
		{ID: 2, WonLottery: 0, Sex: 1, Age: 11, FinishedGrade: 0, UsedAid: 0},
		{ID: 3, WonLottery: 1, Sex: 1, Age: 13, FinishedGrade: 1, UsedAid: 0},
		{ID: 4, WonLottery: 0, Sex: 0, Age: 10, FinishedGrade: 0, UsedAid: 0},
	}

	summary, err := Describe("all students", students)
	require.NoError(t, err)

	assert.Equal(t, "all students", summary.Label)
	assert.Equal(t, 4, summary.N)
	require.Len(t, summary.Columns, len(Columns))

	// Columns come back in schema order
	for i, col := range Columns {
		assert.Equal(t, col, summary.Columns[i].Column)
		assert.Equal(t, 4, summary.Columns[i].Count)
	}

	// Spot-check the lottery share
	won := summary.Columns[1]
	assert.Equal(t, ColumnWonLottery, won.Column)
	assert.InDelta(t, 0.5, won.Mean, 1e-12)
}

func TestDescribe_Empty(t *testing.T) {
	_, err := Describe("nobody", nil)
	assert.Error(t, err)
}

func TestDescribeBy(t *testing.T) {
	students := []Student{
		{ID: 1, Age: 12, UsedAid: 1},
		{ID: 2, Age: 10, UsedAid: 0},
		{ID: 3, Age: 14, UsedAid: 1},
		{ID: 4, Age: 11, UsedAid: 0},
	}
	for i := range students {
		students[i].WonLottery = students[i].UsedAid
	}

	noAid, aid, err := DescribeBy(students, Student.Treated, "no aid", "aid")
	require.NoError(t, err)

	assert.Equal(t, "no aid", noAid.Label)
	assert.Equal(t, "aid", aid.Label)
	assert.Equal(t, 2, noAid.N)
	assert.Equal(t, 2, aid.N)

	// Treated group is older in this toy cohort
	assert.InDelta(t, 13.0, aid.Columns[3].Mean, 1e-12)
	assert.InDelta(t, 10.5, noAid.Columns[3].Mean, 1e-12)
}

func TestDescribeBy_EmptyGroup(t *testing.T) {
	students := []Student{
		{ID: 1, Age: 12, UsedAid: 1},
		{ID: 2, Age: 10, UsedAid: 1},
	}

	_, _, err := DescribeBy(students, Student.Treated, "no aid", "aid")
	assert.Error(t, err, "a one-sided split cannot support a comparison")
}

func TestCompliance(t *testing.T) {
	var students []Student
	add := func(n, won, aid int) {
		for i := 0; i < n; i++ {
			students = append(students, Student{
				ID:         int64(len(students) + 1),
				WonLottery: won,
				UsedAid:    aid,
				Age:        12,
			})
		}
	}

	add(30, 1, 1) // winners who used aid
	add(10, 1, 0) // winners who did not
	add(6, 0, 1)  // losers who used aid anyway
	add(54, 0, 0) // losers without aid

	ct := Compliance(students)

	assert.Equal(t, 30, ct.WinnersAid)
	assert.Equal(t, 10, ct.WinnersNoAid)
	assert.Equal(t, 6, ct.LosersAid)
	assert.Equal(t, 54, ct.LosersNoAid)
	assert.Equal(t, 40, ct.Winners())
	assert.Equal(t, 60, ct.Losers())

	assert.InDelta(t, 0.75, ct.WinnerAidShare(), 1e-12)
	assert.InDelta(t, 0.10, ct.LoserAidShare(), 1e-12)
	assert.InDelta(t, 0.65, ct.TakeupGap(), 1e-12)
}

func TestCompliance_EmptyGroups(t *testing.T) {
	ct := Compliance(nil)

	assert.Equal(t, 0.0, ct.WinnerAidShare())
	assert.Equal(t, 0.0, ct.LoserAidShare())
	assert.Equal(t, 0.0, ct.TakeupGap())
}

func BenchmarkDescribe(b *testing.B) {
	students := make([]Student, 1000)
	for i := range students {
		students[i] = Student{
			ID:            int64(i + 1),
			WonLottery:    i % 2,
			Sex:           (i / 2) % 2,
			Age:           8 + i%8,
			FinishedGrade: (i / 3) % 2,
			UsedAid:       (i / 5) % 2,
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := Describe("benchmark", students); err != nil {
			b.Fatal(err)
		}
	}
}

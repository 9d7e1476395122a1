package concurrent

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunJobs(t *testing.T) {
	jobs := make([]int, 100)
	for i := range jobs {
		jobs[i] = i
	}

	for _, workers := range []int{0, 1, 4, 16} {
		results := RunJobs(workers, jobs, func(job int) int {
			return job * job
		})
		sort.Ints(results)

		assert.Len(t, results, len(jobs))
		for i, r := range results {
			assert.Equal(t, i*i, r)
		}
	}

	assert.Empty(t, RunJobs(4, []int{}, func(job int) int { return job }))
}

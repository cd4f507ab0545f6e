//go:build bench

package docmerge

import (
	"context"
	"fmt"
	"testing"
)

// BenchmarkResolvePoolSize benchmarks pool size calculation.
func BenchmarkResolvePoolSize(b *testing.B) {
	workers := []int{0, 1, 2, 4, 8}

	for _, w := range workers {
		b.Run(workerName(w), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = ResolvePoolSize(w, DefaultMaxPoolSize)
			}
		})
	}
}

func workerName(w int) string {
	if w == 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", w)
}

// BenchmarkPoolCollect measures dispatch overhead with a no-op task.
func BenchmarkPoolCollect(b *testing.B) {
	sizes := []int{1, 2, 4, 8}
	tasks := make([]int, 256)

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			pool := NewPool(size, func(_ context.Context, n int) (int, error) { return n, nil })

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := pool.Collect(context.Background(), tasks); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkPlanChunks measures chunk planning for a large record set.
func BenchmarkPlanChunks(b *testing.B) {
	records := makeRecords(100_000)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := PlanChunks(records, DefaultChunkSize); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBuildRecords measures record resolution for a mixed mapping.
func BenchmarkBuildRecords(b *testing.B) {
	rows := make([]Row, 10_000)
	for i := range rows {
		rows[i] = Row{"Name": "Ada", "City": "London", "Email": "ada@example.com"}
	}
	m := Mapping{"name": CSV("Name"), "city": CSV("City"), "email": CSV("Email"), "sender": Constant("ACME")}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := BuildRecords(m, rows); err != nil {
			b.Fatal(err)
		}
	}
}

package parser

import (
	"fmt"
	"testing"
)

// BenchmarkParse measures tokenizing throughput on a typical chunk line.
func BenchmarkParse(b *testing.B) {
	line := "10:00:05 [pool-2] stream=orders chunk=12 rows=500 fileSizeKb=48 written ok"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(line)
	}
}

// BenchmarkParseInert measures the cost of rejecting free-text lines, which
// dominate exception-heavy logs.
func BenchmarkParseInert(b *testing.B) {
	line := "    at com.pluck.ChunkWriter.flush(ChunkWriter.java:88)"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(line)
	}
}

// BenchmarkParseThroughput measures sustained lines/sec over a mixed batch.
func BenchmarkParseThroughput(b *testing.B) {
	lines := make([]string, 1000)
	for i := range lines {
		switch i % 4 {
		case 0:
			lines[i] = fmt.Sprintf("10:%02d:%02d stream=s%d chunk=%d starting", i/60%60, i%60, i%7, i%40)
		case 1:
			lines[i] = fmt.Sprintf("10:%02d:%02d stream=s%d chunk=%d rows=%d fileSizeKb=%d done", i/60%60, i%60, i%7, i%40, i*13, i)
		case 2:
			lines[i] = fmt.Sprintf("10:%02d:%02d stream=s%d heartbeat", i/60%60, i%60, i%7)
		case 3:
			lines[i] = "worker idle, queue empty"
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(lines[i%1000])
	}
}

// Package benchmarks provides benchmarks for comparing GC performance.
//
// To run with default GC:
//
//	go test -bench=. -benchmem ./benchmarks/...
//
// To run with greenteagc (Go 1.25+):
//
//	GOEXPERIMENT=greenteagc go test -bench=. -benchmem ./benchmarks/...
//
// To compare results:
//
//	go install golang.org/x/perf/cmd/benchstat@latest
//	go test -bench=. -benchmem -count=5 ./benchmarks/... > default.txt
//	GOEXPERIMENT=greenteagc go test -bench=. -benchmem -count=5 ./benchmarks/... > greenteagc.txt
//	benchstat default.txt greenteagc.txt
package benchmarks

import (
	"encoding/json"
	"fmt"
	"runtime"
	"testing"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/ingest"
	"github.com/tovenaar/spirit-tracker/internal/spirit"
	"github.com/tovenaar/spirit-tracker/internal/stats"
)

// seriesPool cycles a handful of franchise names so commonality
// rankings have real groups to count.
var seriesPool = []string{
	"Super Mario",
	"The Legend of Zelda",
	"Kirby",
	"Fire Emblem",
	"Pokémon",
	"Metroid",
	"Xenoblade Chronicles",
	"Donkey Kong",
}

var abilityPool = []string{
	"Fist Attack ↑",
	"Weapon Attack ↑",
	"Can Be Enhanced",
	"None",
	"Jump ↑",
	"Water/Freezing Resist",
}

var affinityPool = []spirit.Affinity{
	spirit.AffinityAttack,
	spirit.AffinityShield,
	spirit.AffinityGrab,
	spirit.AffinityNeutral,
}

func makeRecord(i int) *spirit.Record {
	idx := i + 1
	series := seriesPool[i%len(seriesPool)]
	ability := abilityPool[i%len(abilityPool)]
	affinity := affinityPool[i%len(affinityPool)]
	usage := spirit.UsagePrimary
	if i%3 == 0 {
		usage = spirit.UsageSupport
	}
	rank := i%4 + 1
	slots := i % 4
	power := 1200 + (i*733)%11000
	board := i%2 == 0
	campaign := i%3 != 0
	reward := i%7 == 0
	return &spirit.Record{
		DisplayName:      fmt.Sprintf("Test Spirit %d", i),
		CollectionIndex:  &idx,
		Series:           &series,
		Ability:          &ability,
		Affinity:         &affinity,
		UsageType:        &usage,
		ClassRank:        &rank,
		SlotCount:        &slots,
		BattlePower:      &power,
		HasBoardBattle:   &board,
		IsInCampaign:     &campaign,
		IsCampaignReward: &reward,
	}
}

func makeCatalog(n int) *spirit.Catalog {
	c := spirit.NewCatalog()
	for i := 0; i < n; i++ {
		c.Put(fmt.Sprintf("Test Spirit %d", i), makeRecord(i))
	}
	c.Finalize()
	return c
}

// makeRosterLine builds one wiki table row in the shape the roster
// scanner accepts.
func makeRosterLine(i int) string {
	return fmt.Sprintf("|%03d||Test Spirit %d||Primary||''%s''||Yes||★★★||%s||⬡⬡||1,900||9,500||%s||World of Light||Treasure Chest",
		i+1, i, seriesPool[i%len(seriesPool)], affinityPool[i%len(affinityPool)], abilityPool[i%len(abilityPool)])
}

func makeRosterSource(n int) *ingest.Source {
	src := &ingest.Source{Name: "roster.wiki"}
	src.Lines = append(src.Lines, `{| class="wikitable sortable"`)
	src.Lines = append(src.Lines, "! No. !! Name !! Type !! Series !! Battle !! Class !! Affinity !! Slots !! Power !! Max Power !! Ability !! Location !! Chest")
	for i := 0; i < n; i++ {
		src.Lines = append(src.Lines, "|-")
		src.Lines = append(src.Lines, makeRosterLine(i))
	}
	src.Lines = append(src.Lines, "|}")
	return src
}

func makeEntry(i int) *battlelog.Entry {
	e := battlelog.NewEntry(battlelog.KindSpirit)
	e.DisplayName = fmt.Sprintf("Test Spirit %d", i)
	if i%5 == 0 {
		e.IsShared = true
	}
	winner := battlelog.Seat(i % 2)
	e.Winner = winner
	e.AddLosses(winner, i%4)
	e.AddLosses(battlelog.Seat((i+1)%2), i%3)
	return e
}

func makeLog(n int) *battlelog.Log {
	l := battlelog.NewLog([]string{"Mario", "Luigi"})
	for i := 0; i < n; i++ {
		l.AddOrUpdate(fmt.Sprintf("Test Spirit %d", i), makeEntry(i))
	}
	return l
}

func makeDefinitions() []*stats.Definition {
	return []*stats.Definition{
		stats.BattlesTotal(stats.MatchAll{}),
		stats.BattlesWon(stats.MatchAll{}, false),
		stats.BattlesWon(stats.MatchAll{}, true),
		stats.LossesTotal(stats.MatchAll{}),
		stats.CommonSeries(&stats.CommonalityFilter{}, stats.CommonalityOptions{MostCommon: true, Rank: 1}),
		stats.ToughestBattle(stats.MatchAll{}, stats.CommonalityOptions{MostCommon: true, Rank: 1}),
	}
}

// BenchmarkCatalogAllocation simulates building a full catalog from
// scratch. Every Put clones the record, so this creates many small
// objects that stress the GC.
func BenchmarkCatalogAllocation(b *testing.B) {
	sizes := []int{1000, 5000, 10000}

	for _, size := range sizes {
		b.Run(sizeName(size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				c := makeCatalog(size)
				runtime.KeepAlive(c)
			}
		})
	}
}

// BenchmarkCatalogMerge simulates an addendum override pass: a freshly
// scanned catalog absorbing a second source field by field.
func BenchmarkCatalogMerge(b *testing.B) {
	sizes := []int{1000, 5000}

	for _, size := range sizes {
		overrides := spirit.NewCatalog()
		for i := 0; i < size; i += 3 {
			power := 9999
			overrides.Put(fmt.Sprintf("Test Spirit %d", i), &spirit.Record{
				DisplayName: fmt.Sprintf("Test Spirit %d", i),
				BattlePower: &power,
			})
		}

		b.Run(sizeName(size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				c := makeCatalog(size)
				c.Append(overrides)
				runtime.KeepAlive(c)
			}
		})
	}
}

// BenchmarkRosterScan benchmarks the wiki-markup roster scanner, which
// allocates a record plus field pointers per accepted row.
func BenchmarkRosterScan(b *testing.B) {
	sizes := []int{500, 1000, 5000}

	for _, size := range sizes {
		src := makeRosterSource(size)

		b.Run(lineName(size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				records, warnings := ingest.ScanRoster(src)
				runtime.KeepAlive(records)
				runtime.KeepAlive(warnings)
			}
		})
	}
}

// BenchmarkBattleLogAllocation simulates loading a battle log with per
// seat tallies.
func BenchmarkBattleLogAllocation(b *testing.B) {
	sizes := []int{100, 1000, 5000}

	for _, size := range sizes {
		b.Run(entryName(size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				l := makeLog(size)
				runtime.KeepAlive(l)
			}
		})
	}
}

// BenchmarkJSONMarshal benchmarks save-document encoding which creates
// many temporaries.
func BenchmarkJSONMarshal(b *testing.B) {
	entry := makeEntry(1)
	small := makeLog(100)
	large := makeLog(1000)

	b.Run("Entry", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			data, _ := json.Marshal(entry)
			runtime.KeepAlive(data)
		}
	})

	b.Run("Log100", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			data, _ := json.Marshal(small)
			runtime.KeepAlive(data)
		}
	})

	b.Run("Log1000", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			data, _ := json.Marshal(large)
			runtime.KeepAlive(data)
		}
	})
}

// BenchmarkJSONUnmarshal benchmarks save-document decoding which
// creates the target objects.
func BenchmarkJSONUnmarshal(b *testing.B) {
	entryJSON, _ := json.Marshal(makeEntry(1))
	smallJSON, _ := json.Marshal(makeLog(100))
	largeJSON, _ := json.Marshal(makeLog(1000))

	b.Run("Entry", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var entry battlelog.Entry
			_ = json.Unmarshal(entryJSON, &entry)
		}
	})

	b.Run("Log100", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var l battlelog.Log
			_ = json.Unmarshal(smallJSON, &l)
		}
	})

	b.Run("Log1000", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var l battlelog.Log
			_ = json.Unmarshal(largeJSON, &l)
		}
	})
}

// BenchmarkTally runs the full stat engine over logs of increasing
// size. Each run allocates accumulators, rankings, and result slots.
func BenchmarkTally(b *testing.B) {
	sizes := []int{100, 500, 1000}
	defs := makeDefinitions()

	for _, size := range sizes {
		l := makeLog(size)
		c := makeCatalog(size)

		b.Run(sizeName(size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				results := stats.TallyAll(defs, l, c)
				runtime.KeepAlive(results)
			}
		})
	}
}

// BenchmarkSanitize benchmarks name normalization, which runs a
// transform chain per call.
func BenchmarkSanitize(b *testing.B) {
	names := map[string]string{
		"ASCII":    "Dark Emperor Test Spirit",
		"Accented": "Séañ the Pokémon Trainer",
		"Markup":   `data-sort-value="Zelda"|Zelda² (Breath of the Wild)`,
	}

	for label, name := range names {
		b.Run(label, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				s := spirit.Sanitize(name)
				runtime.KeepAlive(s)
			}
		})
	}
}

// BenchmarkMapOperations benchmarks map-heavy operations common in
// catalog lookups.
func BenchmarkMapOperations(b *testing.B) {
	sizes := []int{1000, 5000, 10000}

	for _, size := range sizes {
		keys := make([]string, size)
		for j := range keys {
			keys[j] = spirit.Sanitize(fmt.Sprintf("Test Spirit %d", j))
		}

		b.Run(sizeName(size)+"_build", func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				m := make(map[string]*spirit.Record, size)
				for j := 0; j < size; j++ {
					m[keys[j]] = makeRecord(j)
				}
				runtime.KeepAlive(m)
			}
		})

		// Pre-build map for lookup benchmark
		m := make(map[string]*spirit.Record, size)
		for j := 0; j < size; j++ {
			m[keys[j]] = makeRecord(j)
		}

		b.Run(sizeName(size)+"_lookup", func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				for j := 0; j < size; j++ {
					rec := m[keys[j]]
					runtime.KeepAlive(rec)
				}
			}
		})
	}
}

// BenchmarkSliceGrowth benchmarks slice append operations.
func BenchmarkSliceGrowth(b *testing.B) {
	sizes := []int{100, 1000, 5000}

	for _, size := range sizes {
		b.Run(sizeName(size)+"_append", func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				var recs []*spirit.Record
				for j := 0; j < size; j++ {
					recs = append(recs, makeRecord(j))
				}
				runtime.KeepAlive(recs)
			}
		})

		b.Run(sizeName(size)+"_preallocated", func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				recs := make([]*spirit.Record, 0, size)
				for j := 0; j < size; j++ {
					recs = append(recs, makeRecord(j))
				}
				runtime.KeepAlive(recs)
			}
		})
	}
}

// BenchmarkConcurrentAllocation tests concurrent allocation patterns.
// Uses different parallelism levels to stress GC under concurrent load.
func BenchmarkConcurrentAllocation(b *testing.B) {
	// SetParallelism sets the number of goroutines to p * GOMAXPROCS.
	// So parallelism=2 with GOMAXPROCS=8 runs 16 goroutines.
	parallelismLevels := []int{1, 2, 4}
	itemsPerGoroutine := 1000

	for _, p := range parallelismLevels {
		b.Run(fmt.Sprintf("parallelism%dx", p), func(b *testing.B) {
			b.ReportAllocs()
			b.SetParallelism(p)
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					recs := make([]*spirit.Record, itemsPerGoroutine)
					for j := range recs {
						recs[j] = makeRecord(j)
					}
					runtime.KeepAlive(recs)
				}
			})
		})
	}
}

func sizeName(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%dk", n/1000)
	}
	return fmt.Sprintf("%d", n)
}

func lineName(n int) string {
	return fmt.Sprintf("%dlines", n)
}

func entryName(n int) string {
	return fmt.Sprintf("%dentries", n)
}

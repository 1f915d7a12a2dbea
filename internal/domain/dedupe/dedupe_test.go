package dedupe_test

import (
	"context"
	"sync"
	"testing"

	dedupe "github.com/okian/strain/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it starts empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording fingerprints", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the fingerprint is new", func() {
				seen := d.SeenAndRecord(ctx, 0xabc)

				Convey("Then it should return false and record it", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the fingerprint was already seen", func() {
				d.SeenAndRecord(ctx, 0xabc)
				seen := d.SeenAndRecord(ctx, 0xabc)

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And zero is a valid fingerprint", func() {
				So(d.SeenAndRecord(ctx, 0), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, 0), ShouldBeTrue)
			})
		})

		Convey("When unrecording fingerprints", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the fingerprint exists", func() {
				d.SeenAndRecord(ctx, 1)
				d.SeenAndRecord(ctx, 2)
				d.SeenAndRecord(ctx, 3)
				d.Unrecord(ctx, 2)

				Convey("Then only it is removed", func() {
					So(d.Size(), ShouldEqual, 2)
					So(d.SeenAndRecord(ctx, 2), ShouldBeFalse)
					So(d.SeenAndRecord(ctx, 1), ShouldBeTrue)
					So(d.SeenAndRecord(ctx, 3), ShouldBeTrue)
				})
			})

			Convey("And the fingerprint does not exist", func() {
				d.Unrecord(ctx, 42)

				Convey("Then nothing changes", func() {
					So(d.Size(), ShouldEqual, 0)
				})
			})
		})

		Convey("When bounded and at capacity", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, k := range []uint64{1, 2, 3} {
				So(d.SeenAndRecord(ctx, k), ShouldBeFalse)
			}
			So(d.SeenAndRecord(ctx, 4), ShouldBeFalse)

			Convey("Then the oldest fingerprint is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, 4), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, 3), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, 2), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, 1), ShouldBeFalse)
			})
		})

		Convey("When bounded to one entry", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1))
			d.SeenAndRecord(ctx, 1)
			d.SeenAndRecord(ctx, 2)

			Convey("Then only the newest survives", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, 2), ShouldBeTrue)
			})

			Convey("Then unrecording the only entry empties it", func() {
				d.Unrecord(ctx, 2)
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, 3), ShouldBeFalse)
			})
		})

		Convey("When unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			const n = 1000
			for i := uint64(0); i < n; i++ {
				d.SeenAndRecord(ctx, i)
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, int64(n))
				for i := uint64(0); i < n; i++ {
					So(d.SeenAndRecord(ctx, i), ShouldBeTrue)
				}
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	ctx := context.Background()

	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const goroutines = 10
		const perGoroutine = 100

		Convey("When goroutines record distinct fingerprints", func() {
			var wg sync.WaitGroup
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for j := 0; j < perGoroutine; j++ {
						d.SeenAndRecord(ctx, uint64(g*perGoroutine+j))
					}
				}(g)
			}
			wg.Wait()

			Convey("Then all of them are recorded", func() {
				So(d.Size(), ShouldEqual, int64(goroutines*perGoroutine))
			})
		})

		Convey("When goroutines race on the same fingerprint", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for g := 0; g < goroutines; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, 7) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one wins", func() {
				So(fresh, ShouldEqual, 1)
			})
		})
	})
}

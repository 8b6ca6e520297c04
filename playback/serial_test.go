package playback

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSerial(t *testing.T) {
	Convey("Given a serial executor", t, func() {
		var exec serial
		var order []int

		Convey("Nested posts should run after the current function", func() {
			exec.do(func() {
				order = append(order, 1)
				exec.do(func() { order = append(order, 3) })
				order = append(order, 2)
			})

			So(order, ShouldResemble, []int{1, 2, 3})
		})

		Convey("Concurrent posts should all run, one at a time", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			running, overlap, total := 0, false, 0

			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					exec.do(func() {
						mu.Lock()
						running++
						if running > 1 {
							overlap = true
						}
						mu.Unlock()

						mu.Lock()
						running--
						total++
						mu.Unlock()
					})
				}()
			}
			wg.Wait()

			So(overlap, ShouldBeFalse)
			So(total, ShouldEqual, 50)
		})

		Convey("A caller should be able to wait for a function queued behind another drainer", func() {
			release := make(chan struct{})
			started := make(chan struct{})
			go exec.do(func() {
				close(started)
				<-release
			})
			<-started

			ran := false
			done := exec.do(func() { ran = true })

			early := false
			select {
			case <-done:
				early = true
			default:
			}
			So(early, ShouldBeFalse)

			close(release)
			<-done
			So(ran, ShouldBeTrue)
		})

		Convey("Enqueued functions should wait for a flush", func() {
			ran := false
			done := exec.enqueue(func() { ran = true })
			So(ran, ShouldBeFalse)

			exec.flush()
			<-done
			So(ran, ShouldBeTrue)
		})

		Convey("A panic should not wedge the executor", func() {
			So(func() { exec.do(func() { panic("boom") }) }, ShouldPanic)

			ran := false
			exec.do(func() { ran = true })
			So(ran, ShouldBeTrue)
		})
	})
}

package room_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskroom.app/server/internal/room"
)

var _ = Describe("Tracker", func() {
	var tracker *room.Tracker

	BeforeEach(func() {
		tracker = room.NewTracker()
	})

	It("starts with nobody joined", func() {
		Expect(tracker.IsJoined("c1")).To(BeFalse())
		_, err := tracker.CurrentWorkspace("c1")
		Expect(err).To(MatchError(room.ErrNotJoined))
		Expect(tracker.CountInRoom(1)).To(BeZero())
	})

	It("joins a room", func() {
		_, hadPrevious := tracker.Join("c1", 2)
		Expect(hadPrevious).To(BeFalse())

		Expect(tracker.IsJoined("c1")).To(BeTrue())
		Expect(tracker.CurrentWorkspace("c1")).To(Equal(int64(2)))
		Expect(tracker.CountInRoom(2)).To(Equal(1))
	})

	It("keeps a connection in a single room", func() {
		tracker.Join("c1", 2)
		tracker.Join("c2", 2)

		left, hadPrevious := tracker.Join("c1", 5)
		Expect(hadPrevious).To(BeTrue())
		Expect(left).To(Equal(int64(2)))

		Expect(tracker.CurrentWorkspace("c1")).To(Equal(int64(5)))
		Expect(tracker.CountInRoom(2)).To(Equal(1))
		Expect(tracker.CountInRoom(5)).To(Equal(1))
		Expect(tracker.Members(2)).To(Equal([]string{"c2"}))
	})

	It("rejoining the same room keeps the count", func() {
		tracker.Join("c1", 3)
		left, hadPrevious := tracker.Join("c1", 3)
		Expect(hadPrevious).To(BeTrue())
		Expect(left).To(Equal(int64(3)))
		Expect(tracker.CountInRoom(3)).To(Equal(1))
	})

	It("leaves a room", func() {
		tracker.Join("c1", 2)

		workspaceID, ok := tracker.Leave("c1")
		Expect(ok).To(BeTrue())
		Expect(workspaceID).To(Equal(int64(2)))
		Expect(tracker.IsJoined("c1")).To(BeFalse())
		Expect(tracker.CountInRoom(2)).To(BeZero())
	})

	It("signals leaving when not joined", func() {
		_, ok := tracker.Leave("ghost")
		Expect(ok).To(BeFalse())
	})

	It("closes a room and returns the evicted connections", func() {
		tracker.Join("c2", 9)
		tracker.Join("c1", 9)
		tracker.Join("c3", 4)

		Expect(tracker.CloseRoom(9)).To(Equal([]string{"c1", "c2"}))
		Expect(tracker.CountInRoom(9)).To(BeZero())
		Expect(tracker.IsJoined("c1")).To(BeFalse())
		Expect(tracker.IsJoined("c3")).To(BeTrue())
		Expect(tracker.CloseRoom(9)).To(BeEmpty())
	})

	It("handles concurrent joins and leaves", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				connID := fmt.Sprintf("c%d", i)
				tracker.Join(connID, 1)
				tracker.Join(connID, int64(i%3)+1)
				if i%5 == 0 {
					tracker.Leave(connID)
				}
			}(i)
		}
		wg.Wait()

		total := tracker.CountInRoom(1) + tracker.CountInRoom(2) + tracker.CountInRoom(3)
		Expect(total).To(Equal(40))
		Expect(len(tracker.Members(1)) + len(tracker.Members(2)) + len(tracker.Members(3))).To(Equal(40))
	})
})

package broadcast_test

import (
	"context"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"taskroom.app/server/internal/broadcast"
	"taskroom.app/server/internal/room"
)

const relayChannel = "taskroom_events_test"

var _ = Describe("RedisRelay", func() {
	var (
		mr      *miniredis.Miniredis
		client  *redis.Client
		ctx     context.Context
		cancel  context.CancelFunc
		done    chan struct{}
		localA  *fakeConn
		remoteB *fakeConn
		otherB  *fakeConn
		gwA     *broadcast.Gateway
	)

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		ctx, cancel = context.WithCancel(context.Background())

		trackerA, trackerB := room.NewTracker(), room.NewTracker()
		relayA := broadcast.NewRedisRelay(client, relayChannel)
		relayB := broadcast.NewRedisRelay(client, relayChannel)
		gwA = broadcast.NewGateway(trackerA, broadcast.WithRelay(relayA))
		gwB := broadcast.NewGateway(trackerB, broadcast.WithRelay(relayB))

		localA = newFakeConn("a1", 8)
		gwA.Register(localA)
		trackerA.Join("a1", 1)

		remoteB = newFakeConn("b1", 8)
		otherB = newFakeConn("b2", 8)
		gwB.Register(remoteB)
		gwB.Register(otherB)
		trackerB.Join("b1", 1)
		trackerB.Join("b2", 2)

		done = make(chan struct{}, 2)
		for _, pair := range []struct {
			relay *broadcast.RedisRelay
			gw    *broadcast.Gateway
		}{{relayA, gwA}, {relayB, gwB}} {
			go func(r *broadcast.RedisRelay, gw *broadcast.Gateway) {
				r.Run(ctx, gw.DeliverRemote)
				done <- struct{}{}
			}(pair.relay, pair.gw)
		}

		Eventually(func() int64 {
			return client.PubSubNumSub(ctx, relayChannel).Val()[relayChannel]
		}).Should(Equal(int64(2)))
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive())
		Eventually(done).Should(Receive())
		Expect(client.Close()).To(Succeed())
		mr.Close()
	})

	It("delivers room events to members on other instances", func() {
		Expect(gwA.Room(1).Send(ctx, broadcast.DeleteTask(7))).To(Equal(1))

		Eventually(remoteB.frames).Should(Receive())
		Consistently(otherB.frames).ShouldNot(Receive())
	})

	It("does not deliver an instance's own events twice", func() {
		gwA.Room(1).Send(ctx, broadcast.UserConnected(1))
		Eventually(remoteB.frames).Should(Receive())

		Expect(localA.events()).To(HaveLen(1))
		Consistently(localA.frames).ShouldNot(Receive())
	})

	It("relays all-connection events", func() {
		gwA.All().Send(ctx, broadcast.DeleteWorkspace(3))

		Eventually(remoteB.frames).Should(Receive())
		Eventually(otherB.frames).Should(Receive())
	})

	It("keeps caller events local", func() {
		gwA.Caller("a1").Send(ctx, broadcast.Error("bad"))

		Expect(localA.events()).To(Equal([]string{broadcast.EventError}))
		Consistently(remoteB.frames).ShouldNot(Receive())
	})
})

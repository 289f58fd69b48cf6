package realtime_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/coder/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskroom.app/server/core/config"
	"taskroom.app/server/internal/broadcast"
	"taskroom.app/server/internal/realtime"
	"taskroom.app/server/internal/room"
)

var _ = Describe("Server", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		tracker *room.Tracker
		gateway *broadcast.Gateway
		srv     *realtime.Server
		httpSrv *httptest.Server
	)

	dial := func(query string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/realtime" + query
		conn, _, err := websocket.Dial(ctx, url, nil)
		Expect(err).NotTo(HaveOccurred())
		return conn
	}

	readFrame := func(conn *websocket.Conn) realtime.Frame {
		readCtx, readCancel := context.WithTimeout(ctx, 2*time.Second)
		defer readCancel()
		_, data, err := conn.Read(readCtx)
		Expect(err).NotTo(HaveOccurred())
		frame, err := realtime.UnmarshalFrame(data)
		Expect(err).NotTo(HaveOccurred())
		return frame
	}

	// nextEvent skips frames until the named event arrives.
	nextEvent := func(conn *websocket.Conn, name string) realtime.Frame {
		for i := 0; i < 10; i++ {
			frame := readFrame(conn)
			if frame.Type == realtime.FrameTypeEvent && frame.Event == name {
				return frame
			}
		}
		Fail("event " + name + " not received")
		return realtime.Frame{}
	}

	userCount := func(frame realtime.Frame) int {
		var p broadcast.UserCountPayload
		Expect(json.Unmarshal(frame.Payload, &p)).To(Succeed())
		return p.Count
	}

	send := func(conn *websocket.Conn, frame realtime.Frame) {
		data, err := realtime.MarshalFrame(frame)
		Expect(err).NotTo(HaveOccurred())
		Expect(conn.Write(ctx, websocket.MessageText, data)).To(Succeed())
	}

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		tracker = room.NewTracker()
		gateway = broadcast.NewGateway(tracker)
		srv = realtime.NewServer(config.RealtimeConfig{
			SendBuffer:          16,
			WorkspaceQueryParam: "workspaceid",
		}, &mockWorkspaceService{}, tracker, gateway)
		httpSrv = httptest.NewServer(http.HandlerFunc(srv.ServeWS))
	})

	AfterEach(func() {
		srv.Close()
		httpSrv.Close()
		cancel()
	})

	It("closes every connection on shutdown and releases their rooms", func() {
		alice := dial("?workspaceid=3")
		defer alice.CloseNow()
		nextEvent(alice, broadcast.EventConnected)
		bob := dial("?workspaceid=3")
		defer bob.CloseNow()
		nextEvent(bob, broadcast.EventConnected)
		Expect(tracker.CountInRoom(3)).To(Equal(2))

		statuses := make(chan websocket.StatusCode, 2)
		for _, conn := range []*websocket.Conn{alice, bob} {
			go func(conn *websocket.Conn) {
				defer GinkgoRecover()
				for {
					if _, _, err := conn.Read(ctx); err != nil {
						statuses <- websocket.CloseStatus(err)
						return
					}
				}
			}(conn)
		}

		srv.Close()

		Eventually(statuses).WithTimeout(3 * time.Second).Should(Receive(Equal(websocket.StatusGoingAway)))
		Eventually(statuses).WithTimeout(3 * time.Second).Should(Receive(Equal(websocket.StatusGoingAway)))
		Eventually(gateway.Count).WithTimeout(3 * time.Second).Should(BeZero())
		Eventually(func() int { return tracker.CountInRoom(3) }).WithTimeout(3 * time.Second).Should(BeZero())
	})

	It("auto-joins from the handshake and fans out within the room", func() {
		alice := dial("?workspaceid=1")
		defer alice.CloseNow()
		Expect(userCount(nextEvent(alice, broadcast.EventUserConnected))).To(Equal(1))
		nextEvent(alice, broadcast.EventConnected)

		bob := dial("?workspaceid=1")
		defer bob.CloseNow()
		nextEvent(bob, broadcast.EventConnected)
		Expect(userCount(nextEvent(alice, broadcast.EventUserConnected))).To(Equal(2))

		carol := dial("?workspaceid=2")
		defer carol.CloseNow()
		nextEvent(carol, broadcast.EventConnected)

		send(alice, realtime.Frame{
			Type:   realtime.FrameTypeRequest,
			ID:     "add-1",
			Method: realtime.MethodAddTask,
			Params: json.RawMessage(`{"title":"water plants"}`),
		})

		Expect(nextEvent(alice, broadcast.EventAddTask).Event).To(Equal(broadcast.EventAddTask))
		resp := readFrame(alice)
		Expect(resp.Type).To(Equal(realtime.FrameTypeResponse))
		Expect(resp.ID).To(Equal("add-1"))
		Expect(*resp.OK).To(BeTrue())

		nextEvent(bob, broadcast.EventAddTask)

		readCtx, readCancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer readCancel()
		_, _, err := carol.Read(readCtx)
		Expect(err).To(HaveOccurred())
	})

	It("reports an invalid handshake workspace id", func() {
		conn := dial("?workspaceid=abc")
		defer conn.CloseNow()

		frame := nextEvent(conn, broadcast.EventError)
		Expect(string(frame.Payload)).To(ContainSubstring("Invalid workspace id"))
		Expect(tracker.CountInRoom(0)).To(BeZero())
	})

	It("leaves the room when the connection drops", func() {
		alice := dial("?workspaceid=3")
		defer alice.CloseNow()
		nextEvent(alice, broadcast.EventConnected)

		bob := dial("?workspaceid=3")
		nextEvent(bob, broadcast.EventConnected)
		Expect(userCount(nextEvent(alice, broadcast.EventUserConnected))).To(Equal(2))

		Expect(bob.Close(websocket.StatusNormalClosure, "bye")).To(Succeed())

		Expect(userCount(nextEvent(alice, broadcast.EventUserDisconnected))).To(Equal(1))
		Eventually(func() int { return tracker.CountInRoom(3) }).Should(Equal(1))
		Eventually(gateway.Count).Should(Equal(1))
	})

	It("evicts everyone when a room is closed", func() {
		alice := dial("?workspaceid=4")
		defer alice.CloseNow()
		nextEvent(alice, broadcast.EventConnected)

		Expect(srv.CloseRoom(ctx, 4)).To(Equal(1))

		frame := nextEvent(alice, broadcast.EventDisconnected)
		Expect(string(frame.Payload)).To(ContainSubstring(`"workspaceId":"4"`))
		Expect(tracker.CountInRoom(4)).To(BeZero())

		send(alice, realtime.Frame{
			Type:   realtime.FrameTypeRequest,
			ID:     "after-close",
			Method: realtime.MethodDeleteTask,
			Params: json.RawMessage(`{"taskId":"1"}`),
		})
		Expect(string(nextEvent(alice, broadcast.EventError).Payload)).To(ContainSubstring("Connect to a workspace first"))
	})
})

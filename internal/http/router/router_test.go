package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskroom.app/server/internal/broadcast"
	"taskroom.app/server/internal/http/router"
	"taskroom.app/server/internal/room"
	"taskroom.app/server/internal/service"
)

type fakeRealtime struct {
	served int
}

func (f *fakeRealtime) ServeWS(w http.ResponseWriter, _ *http.Request) {
	f.served++
	w.WriteHeader(http.StatusSwitchingProtocols)
}

func (f *fakeRealtime) CloseRoom(context.Context, int64) int { return 0 }

type fakeConn struct{ id string }

func (c fakeConn) ID() string        { return c.id }
func (c fakeConn) Send([]byte) bool { return true }

var _ = Describe("SetupRoutes", func() {
	var (
		engine  *gin.Engine
		gateway *broadcast.Gateway
		rt      *fakeRealtime
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		gateway = broadcast.NewGateway(room.NewTracker())
		rt = &fakeRealtime{}
		router.SetupRoutes(engine, service.NewServices(nil, nil), gateway, rt)
	})

	It("reports health with the connection count", func() {
		gateway.Register(fakeConn{id: "a"})
		gateway.Register(fakeConn{id: "b"})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"status":"ok","connections":2}`))
	})

	It("hands the realtime path to the websocket server", func() {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/realtime?workspaceid=1", nil))

		Expect(rt.served).To(Equal(1))
	})

	It("rejects malformed ids before reaching the service", func() {
		for _, path := range []string{"/api/v1/workspaces/nope", "/api/v1/workspaces/0/tasks", "/api/v1/workspaces/1/tasks/-3"} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			Expect(w.Code).To(Equal(http.StatusBadRequest), path)
		}
	})
})

package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskroom.app/server/core/db/sqlc"
	"taskroom.app/server/internal/model"
	"taskroom.app/server/internal/store"
)

var _ = Describe("WorkspaceStore", func() {
	var (
		ctx        context.Context
		db         *fakeDB
		workspaces store.WorkspaceStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = &fakeDB{}
		workspaces = store.NewStores(sqlc.New(db)).Workspaces()
	})

	It("maps missing rows to ErrNotFound", func() {
		_, err := workspaces.GetByID(ctx, 3)
		Expect(err).To(MatchError(store.ErrNotFound))

		_, err = workspaces.Lock(ctx, 3)
		Expect(err).To(MatchError(store.ErrNotFound))

		_, err = workspaces.GetSummary(ctx, 3)
		Expect(err).To(MatchError(store.ErrNotFound))

		Expect(workspaces.Update(ctx, &model.Workspace{ID: 3, Name: "x"})).To(MatchError(store.ErrNotFound))
	})

	It("reads a summary with its task count", func() {
		db.rows = [][]any{{int64(3), "Home", int64(4)}}

		summary, err := workspaces.GetSummary(ctx, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(*summary).To(Equal(model.WorkspaceSummary{ID: 3, Name: "Home", TaskCount: 4}))
	})

	It("creates a workspace with a generated id", func() {
		db.rows = [][]any{workspaceRow(77, "Team")}
		ws := &model.Workspace{Name: "Team"}

		Expect(workspaces.Create(ctx, ws)).To(Succeed())
		Expect(db.rowArgs[0][0]).To(BeNumerically(">", int64(0)))
		Expect(db.rowArgs[0][1]).To(Equal("Team"))
		Expect(ws.ID).To(Equal(int64(77)))
	})

	It("reports deleting a missing workspace as ErrNotFound", func() {
		db.execTags = []string{"DELETE 0"}
		Expect(workspaces.Delete(ctx, 3)).To(MatchError(store.ErrNotFound))
	})
})

package dto_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskroom.app/server/internal/http/dto"
	"taskroom.app/server/internal/model"
)

var _ = Describe("TaskFields", func() {
	decode := func(body string) model.TaskPatch {
		var fields dto.TaskFields
		Expect(json.Unmarshal([]byte(body), &fields)).To(Succeed())
		return fields.Patch()
	}

	It("leaves the deadline alone when the field is absent", func() {
		patch := decode(`{"title":"x"}`)
		Expect(patch.SetDeadline).To(BeFalse())
		Expect(*patch.Title).To(Equal("x"))
		Expect(patch.Completed).To(BeNil())
		Expect(patch.Order).To(BeNil())
	})

	It("clears the deadline on explicit null", func() {
		patch := decode(`{"deadline":null}`)
		Expect(patch.SetDeadline).To(BeTrue())
		Expect(patch.Deadline).To(BeNil())
	})

	It("sets the deadline from a timestamp", func() {
		patch := decode(`{"deadline":"2031-05-06T07:08:09Z"}`)
		Expect(patch.SetDeadline).To(BeTrue())
		Expect(*patch.Deadline).To(BeTemporally("==", time.Date(2031, 5, 6, 7, 8, 9, 0, time.UTC)))
	})

	It("rejects a malformed deadline", func() {
		var fields dto.TaskFields
		Expect(json.Unmarshal([]byte(`{"deadline":"tomorrow"}`), &fields)).NotTo(Succeed())
	})
})

var _ = Describe("ReplaceTaskRequest", func() {
	It("defaults an empty title and clears omitted fields", func() {
		patch := dto.ReplaceTaskRequest{Order: 3}.Patch()
		Expect(*patch.Title).To(Equal(model.DefaultTaskTitle))
		Expect(*patch.Completed).To(BeFalse())
		Expect(*patch.Order).To(Equal(3))
		Expect(patch.SetDeadline).To(BeTrue())
		Expect(patch.Deadline).To(BeNil())
	})
})

var _ = Describe("TaskResponse", func() {
	It("encodes ids as strings", func() {
		raw, err := json.Marshal(dto.ToTaskResponse(model.Task{ID: 9007199254740993, WorkspaceID: 2, Title: "t", Order: 1}))
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(MatchJSON(`{"id":"9007199254740993","workspaceId":"2","title":"t","completed":false,"deadline":null,"order":1}`))
	})
})

var _ = Describe("error messages", func() {
	It("names the missing ids", func() {
		Expect(dto.WorkspaceNotFoundMessage(4)).To(Equal("Workspace with id 4 not found"))
		Expect(dto.TaskNotFoundMessage(4, 7)).To(Equal("Task with id 7 not found in workspace with id 4"))
	})
})

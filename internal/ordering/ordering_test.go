package ordering_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"taskroom.app/server/internal/model"
	"taskroom.app/server/internal/ordering"
)

const (
	taskA int64 = 101
	taskB int64 = 102
	taskC int64 = 103
	taskD int64 = 104
)

func fourTasks() []model.Task {
	return []model.Task{
		{ID: taskA, Title: "A", Order: 0},
		{ID: taskB, Title: "B", Order: 1},
		{ID: taskC, Title: "C", Order: 2},
		{ID: taskD, Title: "D", Order: 3},
	}
}

func ordersByID(tasks []model.Task) map[int64]int {
	out := make(map[int64]int, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t.Order
	}
	return out
}

var _ = Describe("Ordering", func() {
	Describe("Append", func() {
		It("places new tasks at the end", func() {
			var tasks []model.Task
			for i := int64(0); i < 3; i++ {
				order := ordering.Append(len(tasks))
				tasks = append(tasks, model.Task{ID: i + 1, Order: order})
			}

			Expect(ordersByID(tasks)).To(Equal(map[int64]int{1: 0, 2: 1, 3: 2}))
			Expect(ordering.Dense(tasks)).To(BeTrue())
		})
	})

	Describe("Move", func() {
		It("moves a task down and slides the tasks it passes up", func() {
			plan, err := ordering.Move(fourTasks(), taskA, 2)
			Expect(err).NotTo(HaveOccurred())

			Expect(plan.Target).To(Equal(ordering.Shift{TaskID: taskA, From: 0, To: 2}))
			Expect(plan.Shifts).To(Equal([]ordering.Shift{
				{TaskID: taskB, From: 1, To: 0},
				{TaskID: taskC, From: 2, To: 1},
			}))

			result := plan.Apply(fourTasks())
			Expect(ordersByID(result)).To(Equal(map[int64]int{taskB: 0, taskC: 1, taskA: 2, taskD: 3}))
		})

		It("moves a task up and slides the tasks it passes down", func() {
			plan, err := ordering.Move(fourTasks(), taskD, 1)
			Expect(err).NotTo(HaveOccurred())

			result := plan.Apply(fourTasks())
			Expect(ordersByID(result)).To(Equal(map[int64]int{taskA: 0, taskD: 1, taskB: 2, taskC: 3}))
			Expect(plan.Shifts).To(HaveLen(2))
		})

		It("touches only the tasks between source and destination", func() {
			plan, err := ordering.Move(fourTasks(), taskB, 2)
			Expect(err).NotTo(HaveOccurred())

			Expect(plan.Shifts).To(Equal([]ordering.Shift{{TaskID: taskC, From: 2, To: 1}}))
		})

		It("returns an empty plan when the destination is the current order", func() {
			plan, err := ordering.Move(fourTasks(), taskC, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Empty()).To(BeTrue())
			Expect(plan.Shifts).To(BeEmpty())
		})

		It("clamps destinations past the end", func() {
			plan, err := ordering.Move(fourTasks(), taskA, 99)
			Expect(err).NotTo(HaveOccurred())

			Expect(plan.Target.To).To(Equal(3))
			Expect(ordersByID(plan.Apply(fourTasks()))).To(Equal(map[int64]int{taskB: 0, taskC: 1, taskD: 2, taskA: 3}))
		})

		It("clamps negative destinations", func() {
			plan, err := ordering.Move(fourTasks(), taskC, -5)
			Expect(err).NotTo(HaveOccurred())

			Expect(plan.Target.To).To(Equal(0))
			Expect(ordersByID(plan.Apply(fourTasks()))).To(Equal(map[int64]int{taskC: 0, taskA: 1, taskB: 2, taskD: 3}))
		})

		It("is a no-op for a single task", func() {
			tasks := []model.Task{{ID: taskA, Order: 0}}

			plan, err := ordering.Move(tasks, taskA, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Empty()).To(BeTrue())
		})

		It("fails for an unknown task", func() {
			_, err := ordering.Move(fourTasks(), 999, 1)
			Expect(err).To(MatchError(ordering.ErrTaskNotFound))
		})

		It("fails on an empty list", func() {
			_, err := ordering.Move(nil, taskA, 0)
			Expect(err).To(MatchError(ordering.ErrTaskNotFound))
		})
	})

	Describe("Remove", func() {
		It("closes the gap left by the removed task", func() {
			plan, err := ordering.Remove(fourTasks(), taskB)
			Expect(err).NotTo(HaveOccurred())

			Expect(plan.Removed).To(BeTrue())
			Expect(plan.Empty()).To(BeFalse())
			Expect(plan.Shifts).To(Equal([]ordering.Shift{
				{TaskID: taskC, From: 2, To: 1},
				{TaskID: taskD, From: 3, To: 2},
			}))

			result := plan.Apply(fourTasks())
			Expect(ordersByID(result)).To(Equal(map[int64]int{taskA: 0, taskC: 1, taskD: 2}))
		})

		It("needs no shifts when removing the last task", func() {
			plan, err := ordering.Remove(fourTasks(), taskD)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Shifts).To(BeEmpty())
			Expect(plan.Apply(fourTasks())).To(HaveLen(3))
		})

		It("fails for an unknown task", func() {
			_, err := ordering.Remove(fourTasks(), 999)
			Expect(err).To(MatchError(ordering.ErrTaskNotFound))
		})
	})

	Describe("Dense", func() {
		It("rejects gaps and duplicates", func() {
			Expect(ordering.Dense([]model.Task{{ID: 1, Order: 0}, {ID: 2, Order: 2}})).To(BeFalse())
			Expect(ordering.Dense([]model.Task{{ID: 1, Order: 1}, {ID: 2, Order: 1}})).To(BeFalse())
			Expect(ordering.Dense([]model.Task{{ID: 1, Order: -1}})).To(BeFalse())
			Expect(ordering.Dense(nil)).To(BeTrue())
		})
	})

	It("keeps the order dense across random sequences of operations", func() {
		rng := rand.New(rand.NewSource(GinkgoRandomSeed()))
		var tasks []model.Task
		nextID := int64(1)

		for step := 0; step < 500; step++ {
			switch op := rng.Intn(3); {
			case op == 0 || len(tasks) == 0:
				tasks = append(tasks, model.Task{ID: nextID, Order: ordering.Append(len(tasks))})
				nextID++
			case op == 1:
				victim := tasks[rng.Intn(len(tasks))]
				plan, err := ordering.Move(tasks, victim.ID, rng.Intn(len(tasks)+4)-2)
				Expect(err).NotTo(HaveOccurred())
				tasks = plan.Apply(tasks)
			default:
				victim := tasks[rng.Intn(len(tasks))]
				plan, err := ordering.Remove(tasks, victim.ID)
				Expect(err).NotTo(HaveOccurred())
				tasks = plan.Apply(tasks)
			}
			Expect(ordering.Dense(tasks)).To(BeTrue(), "step %d", step)
		}
	})
})

package service

type Services struct {
	workspaces WorkspaceService
}

// NewServices wires the services once per process. The workspace service
// owns the per-workspace locks, so every caller must share the same instance.
func NewServices(stores StoreProvider, txRunner TxRunner) *Services {
	return &Services{
		workspaces: NewWorkspaceService(stores, txRunner),
	}
}

func (s *Services) Workspaces() WorkspaceService {
	return s.workspaces
}

package core

// ArtifactStore defines the interface for artifact persistence. Implementations
// should be thread-safe and scope artifacts by conversation context identifier.
// Short method names (Save/Get/List/Delete) mirror the session store for
// consistency.
type ArtifactStore interface {
	Save(contextID, name string, data []byte) error
	Get(contextID, name string) ([]byte, error)
	List(contextID string) ([]string, error)
	Delete(contextID, name string) error
}

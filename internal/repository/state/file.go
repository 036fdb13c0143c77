package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/clock"
)

// Repository defines persistence operations for the clock status.
type Repository interface {
	Load(ctx context.Context) (domain.Status, error)
	Save(ctx context.Context, status domain.Status) error
}

// FileRepository persists the clock status to a JSON file on disk.
// The file uses the same structpb layout as the status API.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the status from disk.
func (r *FileRepository) Load(_ context.Context) (domain.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Status{}, ErrNotFound
		}

		return domain.Status{}, fmt.Errorf("read state file: %w", err)
	}

	var protoState structpb.Struct
	if err = protojson.Unmarshal(contents, &protoState); err != nil {
		return domain.Status{}, fmt.Errorf("decode state file: %w", err)
	}

	status, err := api.FromStruct(&protoState)
	if err != nil {
		return domain.Status{}, fmt.Errorf("decode state file: %w", err)
	}

	return status, nil
}

// Save writes the status to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	protoState, err := api.ToStruct(status)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(protoState)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

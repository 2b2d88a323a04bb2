// Package registry resolves named database connections from a small
// persisted list (connections.json).
//
// The registry is deliberately read-through: every call re-reads the backing
// file, so a connection added or edited on disk is picked up without
// restarting the process. The list is immutable at runtime: there is no
// create/update/delete API.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNotFound reports a connection name absent from the registry file.
var ErrNotFound = errors.New("connection not found")

// NotFoundError carries the user-facing message for an unknown connection
// name. The French text is part of the tool contract: it is relayed verbatim
// to the hosted agent, which reacts to it as ordinary tool output.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Connexion '%s' introuvable.", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Entry is one named connection in the registry file.
type Entry struct {
	Name             string `json:"name"`
	ConnectionString string `json:"connection_string"`
}

// Registry reads named connection strings from a JSON file.
type Registry struct {
	path string
}

// New creates a Registry backed by the JSON file at path.
func New(path string) *Registry {
	return &Registry{path: path}
}

// load reads and decodes the backing file. A file that is not a JSON array,
// or an entry without a "name", is a configuration error.
func (r *Registry) load() ([]Entry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read connections file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("connections file must contain a JSON list of connections: %w", err)
	}
	return entries, nil
}

// List returns all known connection names in file order.
// Entries without a name are skipped, matching the permissive read path.
func (r *Registry) List() ([]string, error) {
	entries, err := r.load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// Resolve returns the connection string for the given name. Matching is
// exact; the first match wins. The error text for an unknown name is part of
// the tool contract and is relayed verbatim to the hosted agent.
func (r *Registry) Resolve(name string) (string, error) {
	entries, err := r.load()
	if err != nil {
		return "", err
	}

	for _, e := range entries {
		if e.Name == name {
			return e.ConnectionString, nil
		}
	}
	return "", &NotFoundError{Name: name}
}

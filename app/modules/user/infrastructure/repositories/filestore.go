package userdb

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	userdomain "github.com/Black-And-White-Club/advent-bot/app/modules/user/domain"
)

// FileLinkStore keeps the mapping in a single pretty-printed JSON file keyed
// by AoC id, like the old mapping file. Reads and writes are serialized with
// a mutex; the read-modify-write against the file is not otherwise safe.
type FileLinkStore struct {
	mu   sync.Mutex
	path string
}

func NewFileLinkStore(path string) *FileLinkStore {
	return &FileLinkStore{path: path}
}

func (s *FileLinkStore) Put(ctx context.Context, link userdomain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.read()
	if err != nil {
		return err
	}

	// One Discord user holds at most one link; drop any previous one.
	for aocID, existing := range links {
		if existing.DiscordID == link.DiscordID {
			delete(links, aocID)
		}
	}
	links[link.AoCID] = link
	return s.write(links)
}

func (s *FileLinkStore) DeleteByDiscordID(ctx context.Context, discordID string) (userdomain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.read()
	if err != nil {
		return userdomain.Link{}, err
	}

	for aocID, link := range links {
		if link.DiscordID == discordID {
			delete(links, aocID)
			if err := s.write(links); err != nil {
				return userdomain.Link{}, err
			}
			return link, nil
		}
	}
	return userdomain.Link{}, userdomain.ErrNotLinked
}

func (s *FileLinkStore) GetByAoCID(ctx context.Context, aocID string) (userdomain.Link, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.read()
	if err != nil {
		return userdomain.Link{}, false, err
	}
	link, ok := links[aocID]
	return link, ok, nil
}

func (s *FileLinkStore) List(ctx context.Context) ([]userdomain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.read()
	if err != nil {
		return nil, err
	}

	out := make([]userdomain.Link, 0, len(links))
	for _, link := range links {
		out = append(out, link)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AoCID < out[j].AoCID })
	return out, nil
}

func (s *FileLinkStore) read() (map[string]userdomain.Link, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]userdomain.Link), nil
	}
	if err != nil {
		return nil, err
	}

	links := make(map[string]userdomain.Link)
	if err := json.Unmarshal(data, &links); err != nil {
		// Overwriting an unreadable mapping file would lose every link.
		return nil, err
	}
	return links, nil
}

func (s *FileLinkStore) write(links map[string]userdomain.Link) error {
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

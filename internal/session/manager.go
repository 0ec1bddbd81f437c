package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/google/uuid"

	"housepaint/internal/compose"
	"housepaint/internal/domain"
	"housepaint/internal/infra"
	"housepaint/internal/metrics"
	"housepaint/internal/storage"
	"housepaint/internal/upload"
	"housepaint/pkg/zip"
)

// Manager serializes all mutations of a session, owns the open mask editors
// and guards against concurrent generations for the same session.
type Manager struct {
	store     Store
	artifacts storage.ArtifactStore
	composer  *compose.Composer
	recorder  domain.GenerationRecorder
	log       infra.Logger
	now       func() time.Time

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	editors  map[string]*editorEntry
	inflight map[string]struct{}
}

// Options wires a Manager. Recorder may be nil.
type Options struct {
	Store     Store
	Artifacts storage.ArtifactStore
	Composer  *compose.Composer
	Recorder  domain.GenerationRecorder
	Logger    infra.Logger
}

// NewManager builds a Manager.
func NewManager(opts Options) *Manager {
	return &Manager{
		store:     opts.Store,
		artifacts: opts.Artifacts,
		composer:  opts.Composer,
		recorder:  opts.Recorder,
		log:       opts.Logger,
		now:       func() time.Time { return time.Now().UTC() },
		locks:     make(map[string]*sync.Mutex),
		editors:   make(map[string]*editorEntry),
		inflight:  make(map[string]struct{}),
	}
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Create starts a new session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := New(uuid.NewString(), m.now())
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	metrics.ActiveSessions.Inc()
	m.log.Info().Str("session_id", s.ID).Msg("session created")
	return s, nil
}

// Get loads a session.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Delete removes a session, its editor and its artifacts.
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	m.dropEditor(id)
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	for _, key := range artifactKeys(s) {
		m.deleteArtifact(ctx, key)
	}
	metrics.ActiveSessions.Dec()

	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
	return nil
}

// Expire releases sessions the store dropped for inactivity, together with
// their artifacts.
func (m *Manager) Expire(ctx context.Context, expired ...*Session) {
	for _, s := range expired {
		m.release(s.ID)
		for _, key := range artifactKeys(s) {
			m.deleteArtifact(ctx, key)
		}
		metrics.ActiveSessions.Dec()
	}
}

// Reap releases editors and locks still held for sessions that no longer
// exist in the store, and returns how many it released. Stores that expire
// entries on their own (Redis) rely on this.
func (m *Manager) Reap(ctx context.Context) int {
	m.mu.Lock()
	ids := make([]string, 0, len(m.locks)+len(m.editors))
	for id := range m.editors {
		ids = append(ids, id)
	}
	for id := range m.locks {
		if _, ok := m.editors[id]; !ok {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()

	released := 0
	for _, id := range ids {
		unlock := m.lock(id)
		ok, err := m.store.Exists(ctx, id)
		if err == nil && !ok {
			m.release(id)
			released++
		}
		unlock()
	}
	return released
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.editors[id]; ok {
		e.editor.Cancel()
		delete(m.editors, id)
		metrics.OpenEditors.Dec()
	}
	delete(m.locks, id)
}

func artifactKeys(s *Session) []string {
	var keys []string
	if s.Photo != nil {
		keys = append(keys, s.Photo.Key)
	}
	if s.Reference != nil {
		keys = append(keys, s.Reference.Key)
	}
	if s.Mask != nil {
		keys = append(keys, s.Mask.Key)
	}
	if s.Result != nil {
		keys = append(keys, s.Result.Key)
	}
	return keys
}

func (m *Manager) deleteArtifact(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := m.artifacts.Delete(context.WithoutCancel(ctx), key); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("delete artifact")
	}
}

// mutate runs fn on the locked, freshly loaded session and saves it when fn
// succeeds.
func (m *Manager) mutate(ctx context.Context, id string, fn func(s *Session) error) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()
	return m.mutateLocked(ctx, id, fn)
}

func (m *Manager) mutateLocked(ctx context.Context, id string, fn func(s *Session) error) (*Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// SetPhoto stores a new base photo and resets everything derived from the
// previous one, including an open editor.
func (m *Manager) SetPhoto(ctx context.Context, id string, img upload.Image) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()

	var stale []string
	s, err := m.mutateLocked(ctx, id, func(s *Session) error {
		key := fmt.Sprintf("sessions/%s/photo-%d.%s", id, s.PhotoRevision+1, extensionFor(img.MIME))
		stored, err := m.artifacts.Put(ctx, key, img.MIME, img.Data)
		if err != nil {
			return err
		}
		stale = artifactKeys(s)
		s.SetPhoto(Artifact{Key: stored, MIME: img.MIME, Width: img.Width, Height: img.Height}, m.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.dropEditor(id)
	for _, key := range stale {
		m.deleteArtifact(ctx, key)
	}
	metrics.UploadBytes.WithLabelValues("photo").Observe(float64(len(img.Data)))
	m.log.Info().Str("session_id", id).Int("width", img.Width).Int("height", img.Height).Msg("photo uploaded")
	return s, nil
}

// SetReference stores a style reference photo.
func (m *Manager) SetReference(ctx context.Context, id string, img upload.Image) (*Session, error) {
	var stale string
	s, err := m.mutate(ctx, id, func(s *Session) error {
		key := fmt.Sprintf("sessions/%s/reference-%s.%s", id, uuid.NewString()[:8], extensionFor(img.MIME))
		stored, err := m.artifacts.Put(ctx, key, img.MIME, img.Data)
		if err != nil {
			return err
		}
		if s.Reference != nil {
			stale = s.Reference.Key
		}
		s.SetReference(Artifact{Key: stored, MIME: img.MIME, Width: img.Width, Height: img.Height}, m.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.deleteArtifact(ctx, stale)
	metrics.UploadBytes.WithLabelValues("reference").Observe(float64(len(img.Data)))
	return s, nil
}

// ClearReference removes the style reference.
func (m *Manager) ClearReference(ctx context.Context, id string) (*Session, error) {
	var stale string
	s, err := m.mutate(ctx, id, func(s *Session) error {
		if s.Reference != nil {
			stale = s.Reference.Key
		}
		s.ClearReference(m.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.deleteArtifact(ctx, stale)
	return s, nil
}

// SetColor assigns a color to a part. value is a hex code or a swatch name.
func (m *Manager) SetColor(ctx context.Context, id string, part domain.ExteriorPart, hex string) (*Session, error) {
	return m.mutate(ctx, id, func(s *Session) error {
		if sw, ok := domain.FindSwatch(hex); ok {
			hex = sw.Hex
		}
		return s.SetColor(part, hex, m.now())
	})
}

// SetEnabled toggles a part.
func (m *Manager) SetEnabled(ctx context.Context, id string, part domain.ExteriorPart, enabled bool) (*Session, error) {
	return m.mutate(ctx, id, func(s *Session) error {
		return s.SetEnabled(part, enabled, m.now())
	})
}

// SetNote stores the user instruction.
func (m *Manager) SetNote(ctx context.Context, id, note string) (*Session, error) {
	return m.mutate(ctx, id, func(s *Session) error {
		s.SetNote(note, m.now())
		return nil
	})
}

// SetLogo toggles the monogram.
func (m *Manager) SetLogo(ctx context.Context, id string, on bool) (*Session, error) {
	return m.mutate(ctx, id, func(s *Session) error {
		s.SetLogo(on, m.now())
		return nil
	})
}

// applyMask stores mask bytes and replaces the toggles with the detected
// parts. A mask with no legend pixels clears the mask instead. Caller holds
// the session lock.
func (m *Manager) applyMask(ctx context.Context, id string, data []byte, parts []domain.ExteriorPart, w, h int) (*Session, error) {
	var stale string
	s, err := m.mutateLocked(ctx, id, func(s *Session) error {
		if s.Photo == nil {
			return domain.ErrNoBasePhoto
		}
		if s.Mask != nil {
			stale = s.Mask.Key
		}
		if len(parts) == 0 {
			s.ClearMask(m.now())
			return nil
		}
		key := fmt.Sprintf("sessions/%s/mask-%s.png", id, uuid.NewString()[:8])
		stored, err := m.artifacts.Put(ctx, key, "image/png", data)
		if err != nil {
			return err
		}
		s.ApplyMask(Mask{
			Artifact: Artifact{Key: stored, MIME: "image/png", Width: w, Height: h},
			Parts:    parts,
		}, m.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.deleteArtifact(ctx, stale)
	for _, p := range parts {
		metrics.MaskSavesTotal.WithLabelValues(string(p)).Inc()
	}
	m.log.Info().Str("session_id", id).Int("parts", len(parts)).Msg("mask saved")
	return s, nil
}

// ClearMask removes the mask and restores default toggles.
func (m *Manager) ClearMask(ctx context.Context, id string) (*Session, error) {
	var stale string
	s, err := m.mutate(ctx, id, func(s *Session) error {
		if s.Mask != nil {
			stale = s.Mask.Key
		}
		s.ClearMask(m.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.deleteArtifact(ctx, stale)
	return s, nil
}

// MaskPNG returns the saved mask.
func (m *Manager) MaskPNG(ctx context.Context, id string) ([]byte, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Mask == nil {
		return nil, domain.ErrNoMask
	}
	return m.artifacts.Get(ctx, s.Mask.Key)
}

// ResultPNG returns the last generated image as PNG.
func (m *Manager) ResultPNG(ctx context.Context, id string) ([]byte, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Result == nil {
		return nil, domain.ErrNoResult
	}
	return m.artifacts.Get(ctx, s.Result.Key)
}

// Generate runs one generation for the session. The input is snapshotted
// under the session lock; the lock is released during the call so the user
// can keep editing, but a second Generate for the same session is refused.
func (m *Manager) Generate(ctx context.Context, id, requestID string) (*Session, error) {
	unlock := m.lock(id)
	s, err := m.store.Get(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}
	if s.Photo == nil {
		unlock()
		return nil, domain.ErrNoBasePhoto
	}
	if !m.beginGeneration(id) {
		unlock()
		return nil, domain.ErrGenerationInFlight
	}
	defer m.endGeneration(id)

	in, err := m.input(ctx, s)
	unlock()
	if err != nil {
		return nil, err
	}
	in.RequestID = requestID
	revision := s.PhotoRevision
	parts := in.Enabled.Parts()

	genID := uuid.NewString()
	res, genErr := m.composer.Generate(ctx, in)
	if genErr != nil {
		m.record(ctx, genID, id, res, parts, "", genErr)
		return nil, genErr
	}

	data, err := toPNG(res.Image)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		m.record(ctx, genID, id, res, parts, "", err)
		return nil, err
	}
	key, err := m.artifacts.Put(ctx, fmt.Sprintf("sessions/%s/result-%s.png", id, genID), "image/png", data)
	if err != nil {
		m.record(ctx, genID, id, res, parts, "", err)
		return nil, err
	}

	var stale string
	updated, err := m.mutate(ctx, id, func(s *Session) error {
		if s.PhotoRevision != revision {
			return domain.ErrPhotoChanged
		}
		if s.Result != nil {
			stale = s.Result.Key
		}
		s.SetResult(Result{
			Artifact:     Artifact{Key: key, MIME: "image/png"},
			GenerationID: genID,
			Mode:         string(res.Mode),
			Instruction:  res.Instruction,
			CreatedAt:    m.now(),
		}, m.now())
		return nil
	})
	if err != nil {
		m.deleteArtifact(ctx, key)
		m.record(ctx, genID, id, res, parts, "", err)
		return nil, err
	}
	m.deleteArtifact(ctx, stale)
	m.record(ctx, genID, id, res, parts, key, nil)
	return updated, nil
}

func (m *Manager) beginGeneration(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inflight[id]; busy {
		return false
	}
	m.inflight[id] = struct{}{}
	return true
}

func (m *Manager) endGeneration(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, id)
}

// Generating reports whether a generation is in flight for id.
func (m *Manager) Generating(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, busy := m.inflight[id]
	return busy
}

func (m *Manager) input(ctx context.Context, s *Session) (compose.Input, error) {
	base, err := m.artifacts.Get(ctx, s.Photo.Key)
	if err != nil {
		return compose.Input{}, fmt.Errorf("load photo: %w", err)
	}
	in := compose.Input{
		Base:    compose.Image{Data: base, MIME: s.Photo.MIME},
		Colors:  s.Colors.Clone(),
		Enabled: s.Enabled.Clone(),
		Note:    s.Note,
		Logo:    s.Logo,
	}
	if s.Mask != nil {
		data, err := m.artifacts.Get(ctx, s.Mask.Key)
		if err != nil {
			return compose.Input{}, fmt.Errorf("load mask: %w", err)
		}
		in.Mask = &compose.Image{Data: data, MIME: "image/png"}
	}
	if s.Reference != nil {
		data, err := m.artifacts.Get(ctx, s.Reference.Key)
		if err != nil {
			return compose.Input{}, fmt.Errorf("load reference: %w", err)
		}
		in.Reference = &compose.Image{Data: data, MIME: s.Reference.MIME}
	}
	return in, nil
}

// Instruction previews the instruction the next Generate would send.
func (m *Manager) Instruction(ctx context.Context, id string) (compose.ModeName, string, error) {
	unlock := m.lock(id)
	defer unlock()
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return "", "", err
	}
	if s.Photo == nil {
		return "", "", domain.ErrNoBasePhoto
	}
	in, err := m.input(ctx, s)
	if err != nil {
		return "", "", err
	}
	p, err := compose.Build(in)
	if err != nil {
		return "", "", err
	}
	return p.Mode, p.Instruction, nil
}

func (m *Manager) record(ctx context.Context, genID, sessionID string, res compose.Result, parts []domain.ExteriorPart, key string, cause error) {
	if m.recorder == nil || res.Mode == "" {
		return
	}
	rec := domain.GenerationRecord{
		ID:          genID,
		SessionID:   sessionID,
		Mode:        string(res.Mode),
		Parts:       parts,
		Instruction: res.Instruction,
		Model:       m.composer.Model(),
		Status:      domain.GenerationSucceeded,
		ResultKey:   key,
		Duration:    res.Elapsed,
		CreatedAt:   m.now(),
	}
	if cause != nil {
		rec.Status = domain.GenerationFailed
		rec.Error = cause.Error()
	}
	if err := m.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		m.log.Warn().Err(err).Str("session_id", sessionID).Str("generation_id", genID).Msg("record generation")
	}
}

// toPNG passes PNG bytes through and re-encodes anything else.
func toPNG(img compose.Image) ([]byte, error) {
	if _, err := png.DecodeConfig(bytes.NewReader(img.Data)); err == nil {
		return img.Data, nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return buf.Bytes(), nil
}

// IsConflict reports errors that map to a 409.
func IsConflict(err error) bool {
	return errors.Is(err, domain.ErrGenerationInFlight) || errors.Is(err, domain.ErrPhotoChanged)
}

// ErrUnknownPointer is returned for an unrecognized gesture kind.
var ErrUnknownPointer = errors.New("unknown pointer event")

// Bundle packs the last result, the saved mask and the instruction that
// produced the result into a zip archive.
func (m *Manager) Bundle(ctx context.Context, id string) ([]byte, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Result == nil {
		return nil, domain.ErrNoResult
	}
	result, err := m.artifacts.Get(ctx, s.Result.Key)
	if err != nil {
		return nil, err
	}
	modified := s.Result.CreatedAt
	assets := []zip.Asset{{Filename: "result.png", Data: result, Modified: modified}}
	if s.Mask != nil {
		mask, err := m.artifacts.Get(ctx, s.Mask.Key)
		if err != nil {
			return nil, err
		}
		assets = append(assets, zip.Asset{Filename: "mask.png", Data: mask, Modified: modified})
	}
	assets = append(assets, zip.Asset{Filename: "instruction.txt", Data: []byte(s.Result.Instruction), Modified: modified})
	return zip.ArchiveAssets(assets)
}

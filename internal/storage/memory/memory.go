// Package memory provides an in-memory storage.Store used by tests and
// local development without Postgres. Similarity search runs on an HNSW
// graph over the registered descriptors.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/coder/hnsw"
	"github.com/google/uuid"

	"github.com/your-org/photoflow/internal/models"
	"github.com/your-org/photoflow/internal/storage"
)

type Store struct {
	mu sync.RWMutex

	persons     map[uuid.UUID]*models.Person
	descriptors map[uuid.UUID]*models.Descriptor
	personDescs map[uuid.UUID][]uuid.UUID

	images       map[uuid.UUID]*models.Image
	byPathname   map[string]uuid.UUID
	imagePersons map[uuid.UUID]map[uuid.UUID]struct{}
	personImages map[uuid.UUID]map[uuid.UUID]struct{}
	detections   map[uuid.UUID][]models.FaceDetection

	albums      map[uuid.UUID]*models.Album
	albumByKey  map[string]uuid.UUID
	albumImages map[uuid.UUID]map[uuid.UUID]struct{}
	imageAlbums map[uuid.UUID]map[uuid.UUID]struct{}

	jobs map[uuid.UUID]*models.SyncJob

	graph *hnsw.Graph[string] // descriptor id -> vector
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	g := hnsw.NewGraph[string]()
	g.Distance = hnsw.CosineDistance

	return &Store{
		persons:      make(map[uuid.UUID]*models.Person),
		descriptors:  make(map[uuid.UUID]*models.Descriptor),
		personDescs:  make(map[uuid.UUID][]uuid.UUID),
		images:       make(map[uuid.UUID]*models.Image),
		byPathname:   make(map[string]uuid.UUID),
		imagePersons: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		personImages: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		detections:   make(map[uuid.UUID][]models.FaceDetection),
		albums:       make(map[uuid.UUID]*models.Album),
		albumByKey:   make(map[string]uuid.UUID),
		albumImages:  make(map[uuid.UUID]map[uuid.UUID]struct{}),
		imageAlbums:  make(map[uuid.UUID]map[uuid.UUID]struct{}),
		jobs:         make(map[uuid.UUID]*models.SyncJob),
		graph:        g,
	}
}

// --- Persons ---

func (s *Store) CreatePerson(ctx context.Context, name string, seed []float32, seedImageID uuid.UUID, avatarURL string) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p := &models.Person{
		ID:        uuid.New(),
		Name:      name,
		AvatarURL: avatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.persons[p.ID] = p
	s.personImages[p.ID] = make(map[uuid.UUID]struct{})

	s.addDescriptorLocked(p.ID, seed, seedImageID)
	s.associateLocked(seedImageID, p.ID)

	out := *p
	out.ImageCount = len(s.personImages[p.ID])
	return &out, nil
}

func (s *Store) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.persons[id]
	if !ok {
		return nil, nil
	}
	out := *p
	out.ImageCount = len(s.personImages[id])
	return &out, nil
}

func (s *Store) ListPersons(ctx context.Context) ([]models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	persons := make([]models.Person, 0, len(s.persons))
	for id, p := range s.persons {
		out := *p
		out.ImageCount = len(s.personImages[id])
		persons = append(persons, out)
	}
	sort.Slice(persons, func(i, j int) bool {
		if !persons[i].CreatedAt.Equal(persons[j].CreatedAt) {
			return persons[i].CreatedAt.After(persons[j].CreatedAt)
		}
		return persons[i].ID.String() < persons[j].ID.String()
	})
	return persons, nil
}

func (s *Store) RenamePerson(ctx context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.persons[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	return nil
}

func (s *Store) AddDescriptor(ctx context.Context, personID uuid.UUID, vector []float32, sourceImageID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[personID]; !ok {
		return storage.ErrNotFound
	}
	s.addDescriptorLocked(personID, vector, sourceImageID)
	return nil
}

func (s *Store) addDescriptorLocked(personID uuid.UUID, vector []float32, sourceImageID uuid.UUID) {
	// One descriptor per (person, source image): reprocessing the same image
	// must not grow the descriptor set.
	for _, id := range s.personDescs[personID] {
		if s.descriptors[id].SourceImageID == sourceImageID {
			return
		}
	}
	d := &models.Descriptor{
		ID:            uuid.New(),
		PersonID:      personID,
		Vector:        append([]float32(nil), vector...),
		SourceImageID: sourceImageID,
		CreatedAt:     time.Now(),
	}
	s.descriptors[d.ID] = d
	s.personDescs[personID] = append(s.personDescs[personID], d.ID)
	s.graph.Add(hnsw.MakeNode(d.ID.String(), d.Vector))
}

func (s *Store) ListCandidates(ctx context.Context) ([]storage.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(s.persons))
	for id := range s.persons {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	candidates := make([]storage.Candidate, 0, len(ids))
	for _, id := range ids {
		c := storage.Candidate{
			PersonID:   id,
			ImageCount: len(s.personImages[id]),
		}
		for _, did := range s.personDescs[id] {
			c.Descriptors = append(c.Descriptors, s.descriptors[did].Vector)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (s *Store) MergePersons(ctx context.Context, survivorID uuid.UUID, absorbedIDs []uuid.UUID) (*models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	survivor, ok := s.persons[survivorID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for _, aid := range absorbedIDs {
		if _, ok := s.persons[aid]; !ok {
			return nil, storage.ErrNotFound
		}
	}

	for _, aid := range absorbedIDs {
		if aid == survivorID {
			continue
		}

		for imgID := range s.personImages[aid] {
			s.associateLocked(imgID, survivorID)
			delete(s.imagePersons[imgID], aid)
		}
		delete(s.personImages, aid)

		for _, did := range s.personDescs[aid] {
			s.descriptors[did].PersonID = survivorID
			s.personDescs[survivorID] = append(s.personDescs[survivorID], did)
		}
		delete(s.personDescs, aid)

		for imgID := range s.detections {
			dets := s.detections[imgID]
			for i := range dets {
				if dets[i].PersonID != nil && *dets[i].PersonID == aid {
					id := survivorID
					dets[i].PersonID = &id
				}
			}
		}

		delete(s.persons, aid)
	}

	survivor.UpdatedAt = time.Now()
	out := *survivor
	out.ImageCount = len(s.personImages[survivorID])
	return &out, nil
}

func (s *Store) SearchPersons(ctx context.Context, descriptor []float32, threshold float64, limit int) ([]storage.PersonMatch, error) {
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.descriptors) == 0 {
		return nil, nil
	}

	// Over-fetch neighbors since one person may own several descriptors,
	// then re-rank with exact cosine scores.
	k := limit * 4
	if k > len(s.descriptors) {
		k = len(s.descriptors)
	}
	neighbors := s.graph.Search(descriptor, k)

	best := make(map[uuid.UUID]float32)
	for _, n := range neighbors {
		did, err := uuid.Parse(n.Key)
		if err != nil {
			continue
		}
		d, ok := s.descriptors[did]
		if !ok {
			continue
		}
		score := cosineScore(descriptor, d.Vector)
		if score > best[d.PersonID] {
			best[d.PersonID] = score
		}
	}

	var matches []storage.PersonMatch
	for pid, score := range best {
		if float64(score) < threshold {
			continue
		}
		p := s.persons[pid]
		if p == nil {
			continue
		}
		out := *p
		out.ImageCount = len(s.personImages[pid])
		matches = append(matches, storage.PersonMatch{Person: out, Score: score})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Person.ID.String() < matches[j].Person.ID.String()
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// --- Images ---

func (s *Store) UpsertImage(ctx context.Context, url, pathname string) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byPathname[pathname]; ok {
		img := s.images[id]
		img.URL = url
		return s.cloneImageLocked(img), nil
	}

	img := &models.Image{
		ID:        uuid.New(),
		URL:       url,
		Pathname:  pathname,
		CreatedAt: time.Now(),
	}
	s.images[img.ID] = img
	s.byPathname[pathname] = img.ID
	s.imagePersons[img.ID] = make(map[uuid.UUID]struct{})
	s.imageAlbums[img.ID] = make(map[uuid.UUID]struct{})
	return s.cloneImageLocked(img), nil
}

func (s *Store) GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[id]
	if !ok {
		return nil, nil
	}
	return s.cloneImageLocked(img), nil
}

func (s *Store) GetImageByPathname(ctx context.Context, pathname string) (*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPathname[pathname]
	if !ok {
		return nil, nil
	}
	return s.cloneImageLocked(s.images[id]), nil
}

func (s *Store) ListImages(ctx context.Context) ([]models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	images := make([]models.Image, 0, len(s.images))
	for _, img := range s.images {
		images = append(images, *s.cloneImageLocked(img))
	}
	sort.Slice(images, func(i, j int) bool {
		if !images[i].CreatedAt.Equal(images[j].CreatedAt) {
			return images[i].CreatedAt.After(images[j].CreatedAt)
		}
		return images[i].ID.String() < images[j].ID.String()
	})
	return images, nil
}

func (s *Store) UpdateImageCaption(ctx context.Context, id uuid.UUID, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return storage.ErrNotFound
	}
	img.Caption = caption
	return nil
}

func (s *Store) UpdateImageInfo(ctx context.Context, id uuid.UUID, width, height int, fileSize int64, fileType string, takenAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return storage.ErrNotFound
	}
	img.Width = width
	img.Height = height
	img.FileSize = fileSize
	img.FileType = fileType
	if takenAt != nil {
		img.TakenAt = takenAt
	}
	return nil
}

func (s *Store) DeleteImage(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return storage.ErrNotFound
	}

	for pid := range s.imagePersons[id] {
		delete(s.personImages[pid], id)
	}
	delete(s.imagePersons, id)

	for aid := range s.imageAlbums[id] {
		delete(s.albumImages[aid], id)
	}
	delete(s.imageAlbums, id)

	delete(s.detections, id)
	delete(s.byPathname, img.Pathname)
	delete(s.images, id)
	return nil
}

func (s *Store) AssociatePerson(ctx context.Context, imageID, personID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[imageID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := s.persons[personID]; !ok {
		return storage.ErrNotFound
	}
	s.associateLocked(imageID, personID)
	return nil
}

func (s *Store) associateLocked(imageID, personID uuid.UUID) {
	if s.imagePersons[imageID] == nil {
		s.imagePersons[imageID] = make(map[uuid.UUID]struct{})
	}
	if s.personImages[personID] == nil {
		s.personImages[personID] = make(map[uuid.UUID]struct{})
	}
	s.imagePersons[imageID][personID] = struct{}{}
	s.personImages[personID][imageID] = struct{}{}
}

func (s *Store) ListImagePersons(ctx context.Context, imageID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.imagePersons[imageID]), nil
}

func (s *Store) ListPersonImages(ctx context.Context, personID uuid.UUID) ([]models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var images []models.Image
	for id := range s.personImages[personID] {
		if img, ok := s.images[id]; ok {
			images = append(images, *s.cloneImageLocked(img))
		}
	}
	sort.Slice(images, func(i, j int) bool {
		if !images[i].CreatedAt.Equal(images[j].CreatedAt) {
			return images[i].CreatedAt.After(images[j].CreatedAt)
		}
		return images[i].ID.String() < images[j].ID.String()
	})
	return images, nil
}

func (s *Store) ReplaceDetections(ctx context.Context, imageID uuid.UUID, detections []models.FaceDetection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[imageID]; !ok {
		return storage.ErrNotFound
	}

	dets := make([]models.FaceDetection, len(detections))
	for i, d := range detections {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		d.ImageID = imageID
		if d.CreatedAt.IsZero() {
			d.CreatedAt = time.Now()
		}
		dets[i] = d
	}
	s.detections[imageID] = dets
	return nil
}

func (s *Store) ListDetections(ctx context.Context, imageID uuid.UUID) ([]models.FaceDetection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.FaceDetection(nil), s.detections[imageID]...), nil
}

// --- Albums ---

func (s *Store) CreateAlbum(ctx context.Context, name, description string) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := &models.Album{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Kind:        models.AlbumKindManual,
		CreatedAt:   time.Now(),
	}
	s.albums[a.ID] = a
	s.albumImages[a.ID] = make(map[uuid.UUID]struct{})
	return s.cloneAlbumLocked(a), nil
}

func (s *Store) EnsureAlbum(ctx context.Context, kind models.AlbumKind, key, name string) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapKey := string(kind) + "/" + key
	if id, ok := s.albumByKey[mapKey]; ok {
		a := s.albums[id]
		a.Name = name
		return s.cloneAlbumLocked(a), nil
	}

	a := &models.Album{
		ID:        uuid.New(),
		Name:      name,
		Kind:      kind,
		Key:       key,
		CreatedAt: time.Now(),
	}
	s.albums[a.ID] = a
	s.albumByKey[mapKey] = a.ID
	s.albumImages[a.ID] = make(map[uuid.UUID]struct{})
	return s.cloneAlbumLocked(a), nil
}

func (s *Store) GetAlbum(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.albums[id]
	if !ok {
		return nil, nil
	}
	return s.cloneAlbumLocked(a), nil
}

func (s *Store) ListAlbums(ctx context.Context) ([]models.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	albums := make([]models.Album, 0, len(s.albums))
	for _, a := range s.albums {
		albums = append(albums, *s.cloneAlbumLocked(a))
	}
	sort.Slice(albums, func(i, j int) bool {
		if !albums[i].CreatedAt.Equal(albums[j].CreatedAt) {
			return albums[i].CreatedAt.After(albums[j].CreatedAt)
		}
		return albums[i].ID.String() < albums[j].ID.String()
	})
	return albums, nil
}

func (s *Store) UpdateAlbum(ctx context.Context, id uuid.UUID, name, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.albums[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.Name = name
	a.Description = description
	return nil
}

func (s *Store) DeleteAlbum(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.albums[id]
	if !ok {
		return storage.ErrNotFound
	}
	for imgID := range s.albumImages[id] {
		delete(s.imageAlbums[imgID], id)
	}
	delete(s.albumImages, id)
	delete(s.albumByKey, string(a.Kind)+"/"+a.Key)
	delete(s.albums, id)
	return nil
}

func (s *Store) AddImageToAlbum(ctx context.Context, albumID, imageID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.albums[albumID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := s.images[imageID]; !ok {
		return storage.ErrNotFound
	}
	s.albumImages[albumID][imageID] = struct{}{}
	if s.imageAlbums[imageID] == nil {
		s.imageAlbums[imageID] = make(map[uuid.UUID]struct{})
	}
	s.imageAlbums[imageID][albumID] = struct{}{}
	return nil
}

func (s *Store) RemoveImageFromAlbum(ctx context.Context, albumID, imageID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.albums[albumID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.albumImages[albumID], imageID)
	delete(s.imageAlbums[imageID], albumID)
	return nil
}

func (s *Store) ListAlbumImages(ctx context.Context, albumID uuid.UUID) ([]models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var images []models.Image
	for id := range s.albumImages[albumID] {
		if img, ok := s.images[id]; ok {
			images = append(images, *s.cloneImageLocked(img))
		}
	}
	sort.Slice(images, func(i, j int) bool {
		if !images[i].CreatedAt.Equal(images[j].CreatedAt) {
			return images[i].CreatedAt.After(images[j].CreatedAt)
		}
		return images[i].ID.String() < images[j].ID.String()
	})
	return images, nil
}

// --- Sync jobs ---

func (s *Store) CreateJob(ctx context.Context) (*models.SyncJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := &models.SyncJob{
		ID:        uuid.New(),
		Status:    models.JobStatusPending,
		CreatedAt: time.Now(),
	}
	s.jobs[j.ID] = j
	out := *j
	return &out, nil
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*models.SyncJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	out := *j
	return &out, nil
}

func (s *Store) UpdateJob(ctx context.Context, job *models.SyncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return storage.ErrNotFound
	}
	out := *job
	s.jobs[job.ID] = &out
	return nil
}

// --- helpers ---

func (s *Store) cloneImageLocked(img *models.Image) *models.Image {
	out := *img
	out.PeopleIDs = sortedIDs(s.imagePersons[img.ID])
	out.AlbumIDs = sortedIDs(s.imageAlbums[img.ID])
	return &out
}

func (s *Store) cloneAlbumLocked(a *models.Album) *models.Album {
	out := *a
	out.ImageCount = len(s.albumImages[a.ID])

	var latest *models.Image
	for id := range s.albumImages[a.ID] {
		img, ok := s.images[id]
		if !ok {
			continue
		}
		if latest == nil || img.CreatedAt.After(latest.CreatedAt) {
			latest = img
		}
	}
	if latest != nil {
		out.CoverImage = latest.URL
	}
	return &out
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func cosineScore(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return -1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

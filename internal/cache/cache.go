package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/disintegration/gift"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"golang.org/x/sync/singleflight"

	"imagetinder/internal/imagemeta"
)

// ErrCorruptImage - файл не декодируется даже после повторной загрузки
var ErrCorruptImage = errors.New("повреждённое изображение")

const (
	manifestName   = "pinned.txt"
	previewMaxSide = 512
	jpegQuality    = 90
)

// RemoteStore - минимальный контракт удалённого хранилища, нужный кешу
type RemoteStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
}

type entry struct {
	lastAccess time.Time
	pinned     bool
}

// Cache - дисковый кеш изображений: один файл <id>.jpg на запись плюс
// манифест закреплённых идентификаторов. Все мутации каталога идут только
// через методы кеша.
type Cache struct {
	dir       string
	maxImages int
	remote    RemoteStore

	mu       sync.Mutex
	entries  map[int64]*entry
	manifest map[int64]struct{}

	group singleflight.Group
}

func New(dir string, maxImages int, remote RemoteStore) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога кеша: %w", err)
	}

	c := &Cache{
		dir:       dir,
		maxImages: maxImages,
		remote:    remote,
		entries:   make(map[int64]*entry),
		manifest:  make(map[int64]struct{}),
	}

	if err := c.rescan(); err != nil {
		return nil, err
	}

	return c, nil
}

// rescan восстанавливает записи после рестарта: mtime файла считается
// временем последнего доступа
func (c *Cache) rescan() error {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("ошибка чтения каталога кеша: %w", err)
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		if filepath.Ext(name) != ".jpg" {
			continue
		}
		id, err := strconv.ParseInt(name[:len(name)-len(".jpg")], 10, 64)
		if err != nil {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		c.entries[id] = &entry{lastAccess: info.ModTime()}
	}

	manifest, err := readManifest(filepath.Join(c.dir, manifestName))
	if err != nil {
		log.Printf("Внимание: не удалось прочитать манифест кеша: %v", err)
		manifest = map[int64]struct{}{}
	}
	c.manifest = manifest
	for id := range manifest {
		if e, ok := c.entries[id]; ok {
			e.pinned = true
		}
	}

	log.Printf("Кеш инициализирован: %s записей, %s закреплено",
		humanize.Comma(int64(len(c.entries))), humanize.Comma(int64(len(manifest))))
	return nil
}

func (c *Cache) filePath(imageID int64) string {
	return filepath.Join(c.dir, strconv.FormatInt(imageID, 10)+".jpg")
}

// Get возвращает байты изображения из кеша, при промахе скачивает из
// удалённого хранилища. Загрузка одного id сериализуется, разные id
// обрабатываются параллельно.
func (c *Cache) Get(ctx context.Context, imageID int64, remotePath string) ([]byte, error) {
	v, err, _ := c.group.Do(strconv.FormatInt(imageID, 10), func() (interface{}, error) {
		return c.load(ctx, imageID, remotePath)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) load(ctx context.Context, imageID int64, remotePath string) ([]byte, error) {
	if c.touch(imageID) {
		data, err := os.ReadFile(c.filePath(imageID))
		if err == nil {
			if _, _, decErr := image.DecodeConfig(bytes.NewReader(data)); decErr == nil {
				return data, nil
			}
			// повреждённый файл считается промахом: одна повторная загрузка
			log.Printf("Повреждённый файл в кеше, повторная загрузка: id=%d", imageID)
		}
		c.discard(imageID)
	}

	return c.fetchAndStore(ctx, imageID, remotePath)
}

// touch обновляет время доступа существующей записи
func (c *Cache) touch(imageID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[imageID]
	if !ok {
		return false
	}
	e.lastAccess = time.Now()
	_ = os.Chtimes(c.filePath(imageID), e.lastAccess, e.lastAccess)
	return true
}

func (c *Cache) discard(imageID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, imageID)
	_ = os.Remove(c.filePath(imageID))
}

func (c *Cache) fetchAndStore(ctx context.Context, imageID int64, remotePath string) ([]byte, error) {
	raw, err := c.remote.Download(ctx, remotePath)
	if err != nil {
		return nil, err
	}

	data, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	// запись во временный файл, переименование только при полном успехе
	tmp := filepath.Join(c.dir, "tmp-"+uuid.New().String())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("ошибка записи в кеш: %w", err)
	}
	if err := os.Rename(tmp, c.filePath(imageID)); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("ошибка записи в кеш: %w", err)
	}

	c.mu.Lock()
	_, pinned := c.manifest[imageID]
	c.entries[imageID] = &entry{lastAccess: time.Now(), pinned: pinned}
	c.mu.Unlock()

	return data, nil
}

// normalize декодирует изображение, поворачивает его по EXIF-ориентации
// и кодирует обратно в JPEG, чтобы все файлы кеша лежали "вверх головой"
func normalize(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	orientation, err := imagemeta.Orientation(raw)
	if err != nil {
		log.Printf("Внимание: ориентация EXIF не прочитана, изображение не повёрнуто: %v", err)
		orientation = 1
	}

	var g *gift.GIFT
	switch orientation {
	case 1:
		// уже вверх головой
	case 3:
		g = gift.New(gift.Rotate180())
	case 6:
		g = gift.New(gift.Rotate270())
	case 8:
		g = gift.New(gift.Rotate90())
	default:
		log.Printf("Внимание: неизвестная ориентация EXIF %d, изображение не повёрнуто", orientation)
	}

	if g != nil {
		dst := image.NewRGBA(g.Bounds(img.Bounds()))
		g.Draw(dst, img)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("ошибка кодирования JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// GetPreview отдаёт миниатюру с длинной стороной не больше 512 пикселей.
// Отдельного места в кеше миниатюра не занимает.
func (c *Cache) GetPreview(ctx context.Context, imageID int64, remotePath string) ([]byte, error) {
	return c.GetResized(ctx, imageID, remotePath, previewMaxSide, previewMaxSide)
}

// GetResized отдаёт вариант с ограниченными размерами, не сохраняя его
func (c *Cache) GetResized(ctx context.Context, imageID int64, remotePath string, maxW, maxH int) ([]byte, error) {
	if maxW <= 0 || maxH <= 0 {
		return nil, fmt.Errorf("некорректные размеры: %dx%d", maxW, maxH)
	}

	data, err := c.Get(ctx, imageID, remotePath)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}

	thumb := resize.Thumbnail(uint(maxW), uint(maxH), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("ошибка кодирования JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// CacheMany прогревает кеш набором изображений и записывает манифест их
// идентификаторов. Идентификаторы из манифеста не вычищаются очисткой ещё
// до вызова Pin, иначе прогрев гонялся бы с первой очисткой.
func (c *Cache) CacheMany(ctx context.Context, idToPath map[int64]string) error {
	for imageID, remotePath := range idToPath {
		if _, err := c.Get(ctx, imageID, remotePath); err != nil {
			log.Printf("Внимание: не удалось закешировать изображение %d: %v", imageID, err)
		}
	}

	ids := make([]int64, 0, len(idToPath))
	for imageID := range idToPath {
		ids = append(ids, imageID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replaceManifest(ids)
}

// Pin закрепляет набор изображений и снимает закрепление со всех остальных
// одной атомарной заменой
func (c *Cache) Pin(ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pinned := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		pinned[id] = struct{}{}
	}
	for id, e := range c.entries {
		_, ok := pinned[id]
		e.pinned = ok
	}

	return c.replaceManifest(ids)
}

// replaceManifest переписывает манифест целиком; вызывается под c.mu
func (c *Cache) replaceManifest(ids []int64) error {
	manifest := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		manifest[id] = struct{}{}
	}
	c.manifest = manifest

	var buf bytes.Buffer
	for _, id := range ids {
		fmt.Fprintf(&buf, "%d\n", id)
	}

	tmp := filepath.Join(c.dir, "tmp-"+uuid.New().String())
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("ошибка записи манифеста: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(c.dir, manifestName)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ошибка записи манифеста: %w", err)
	}
	return nil
}

// Sweep удаляет самые старые по времени доступа незакреплённые записи,
// пока их число не опустится до maxEntries. Закреплённые записи не
// учитываются и не удаляются, даже если их больше maxEntries.
func (c *Cache) Sweep(maxEntries int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	type victim struct {
		id         int64
		lastAccess time.Time
	}

	var candidates []victim
	for id, e := range c.entries {
		if e.pinned {
			continue
		}
		if _, ok := c.manifest[id]; ok {
			continue
		}
		candidates = append(candidates, victim{id: id, lastAccess: e.lastAccess})
	}

	excess := len(candidates) - maxEntries
	if excess <= 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].lastAccess.Equal(candidates[j].lastAccess) {
			return candidates[i].id < candidates[j].id
		}
		return candidates[i].lastAccess.Before(candidates[j].lastAccess)
	})

	var removed, freed int64
	for _, v := range candidates[:excess] {
		path := c.filePath(v.id)
		if info, err := os.Stat(path); err == nil {
			freed += info.Size()
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Внимание: не удалось удалить %s: %v", path, err)
			continue
		}
		delete(c.entries, v.id)
		removed++
	}

	log.Printf("Очистка кеша: удалено %s файлов (%s)",
		humanize.Comma(removed), humanize.Bytes(uint64(freed)))
	return nil
}

// Len возвращает число записей, число закреплённых - для журналов и проверок
func (c *Cache) Len() (total, pinned int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.pinned {
			pinned++
		}
	}
	return len(c.entries), pinned
}

func readManifest(path string) (map[int64]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int64]struct{}{}, nil
		}
		return nil, err
	}

	manifest := make(map[int64]struct{})
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		id, err := strconv.ParseInt(string(bytes.TrimSpace(line)), 10, 64)
		if err != nil {
			continue
		}
		manifest[id] = struct{}{}
	}
	return manifest, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lms-api/internal/domain"
)

// CourseCache es la capa cache-aside del catalogo. Las lecturas reportan
// el origen (hit o miss); las escrituras del catalogo invalidan sus
// entradas de forma sincrona antes de responder.
type CourseCache interface {
	GetCourse(ctx context.Context, id string) (domain.Course, bool, error)
	SetCourse(ctx context.Context, course domain.Course) error
	InvalidateCourse(ctx context.Context, id string) error
	GetList(ctx context.Context) ([]domain.Course, bool, error)
	SetList(ctx context.Context, courses []domain.Course) error
	InvalidateList(ctx context.Context) error
}

type redisCourseCache struct {
	client  redisKV
	ttl     time.Duration
	prefix  string
	listKey string
}

func NewRedisCourseCache(client *redis.Client, ttl time.Duration) CourseCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &redisCourseCache{
		client:  client,
		ttl:     ttl,
		prefix:  "course:",
		listKey: "courses:all",
	}
}

func (c *redisCourseCache) GetCourse(ctx context.Context, id string) (domain.Course, bool, error) {
	payload, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Course{}, false, nil
	}
	if err != nil {
		return domain.Course{}, false, err
	}
	var course domain.Course
	if err := json.Unmarshal(payload, &course); err != nil {
		return domain.Course{}, false, err
	}
	return course, true, nil
}

func (c *redisCourseCache) SetCourse(ctx context.Context, course domain.Course) error {
	payload, err := json.Marshal(course)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+course.ID, payload, c.ttl).Err()
}

func (c *redisCourseCache) InvalidateCourse(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.prefix+id).Err()
}

func (c *redisCourseCache) GetList(ctx context.Context) ([]domain.Course, bool, error) {
	payload, err := c.client.Get(ctx, c.listKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var courses []domain.Course
	if err := json.Unmarshal(payload, &courses); err != nil {
		return nil, false, err
	}
	return courses, true, nil
}

func (c *redisCourseCache) SetList(ctx context.Context, courses []domain.Course) error {
	payload, err := json.Marshal(courses)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.listKey, payload, c.ttl).Err()
}

func (c *redisCourseCache) InvalidateList(ctx context.Context) error {
	return c.client.Del(ctx, c.listKey).Err()
}

type memoryCourseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	courses map[string]memoryCacheEntry
	list    []domain.Course
	listSet bool
	listExp time.Time
}

type memoryCacheEntry struct {
	course    domain.Course
	expiresAt time.Time
}

func NewMemoryCourseCache(ttl time.Duration) CourseCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &memoryCourseCache{
		ttl:     ttl,
		courses: make(map[string]memoryCacheEntry),
	}
}

func (c *memoryCourseCache) GetCourse(_ context.Context, id string) (domain.Course, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.courses[id]
	if !ok || time.Now().UTC().After(entry.expiresAt) {
		delete(c.courses, id)
		return domain.Course{}, false, nil
	}
	return entry.course, true, nil
}

func (c *memoryCourseCache) SetCourse(_ context.Context, course domain.Course) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.courses[course.ID] = memoryCacheEntry{
		course:    course,
		expiresAt: time.Now().UTC().Add(c.ttl),
	}
	return nil
}

func (c *memoryCourseCache) InvalidateCourse(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.courses, id)
	return nil
}

func (c *memoryCourseCache) GetList(_ context.Context) ([]domain.Course, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.listSet || time.Now().UTC().After(c.listExp) {
		c.listSet = false
		return nil, false, nil
	}
	return c.list, true, nil
}

func (c *memoryCourseCache) SetList(_ context.Context, courses []domain.Course) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = courses
	c.listSet = true
	c.listExp = time.Now().UTC().Add(c.ttl)
	return nil
}

func (c *memoryCourseCache) InvalidateList(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
	c.listSet = false
	return nil
}

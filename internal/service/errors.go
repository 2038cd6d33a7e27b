package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/d60-Lab/twitter-core/internal/repository"
)

var (
	ErrFollowSelf = errors.New("cannot follow self")
	// ErrNotFound 引用的用户或推文不存在，未发生任何写入
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable 存储失败或事务提交失败，批次整体回滚
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError 字段级校验失败，未发生任何写入
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func notFound(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// storeErr 把非预期错误归为 ErrStoreUnavailable，保留原始错误链
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrFollowSelf) || errors.As(err, &ve) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func resultOf(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

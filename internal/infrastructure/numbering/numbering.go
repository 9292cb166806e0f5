// Package numbering genera los consecutivos legibles de ventas, devoluciones y traslados.
package numbering

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/retail-stock-api/internal/application/ports"
)

var (
	_ ports.DocumentNumberer = (*RedisNumberer)(nil)
	_ ports.DocumentNumberer = (*Sequence)(nil)
)

// Format arma el número de documento: <tipo>-<código sede>-<consecutivo de 6 dígitos>.
func Format(kind, locationCode string, seq int64) string {
	code := strings.ToUpper(strings.TrimSpace(locationCode))
	if code == "" {
		code = "GEN"
	}
	return fmt.Sprintf("%s-%s-%06d", kind, code, seq)
}

// RedisNumberer consecutivo por sede y tipo con INCR atómico en Redis.
// Un rollback posterior deja un hueco en la numeración; no se reutilizan números.
type RedisNumberer struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisNumberer crea el generador sobre un cliente ya conectado.
func NewRedisNumberer(rdb *redis.Client, prefix string) *RedisNumberer {
	if prefix == "" {
		prefix = "docseq"
	}
	return &RedisNumberer{rdb: rdb, prefix: prefix}
}

// Next incrementa y devuelve el siguiente número.
func (n *RedisNumberer) Next(ctx context.Context, kind, locationCode string) (string, error) {
	key := fmt.Sprintf("%s:%s:%s", n.prefix, kind, strings.ToUpper(locationCode))
	seq, err := n.rdb.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("redis incr %s: %w", key, err)
	}
	return Format(kind, locationCode, seq), nil
}

// Sequence consecutivo en proceso (driver memory y tests).
type Sequence struct {
	mu   sync.Mutex
	next map[string]int64
}

// NewSequence crea un consecutivo vacío.
func NewSequence() *Sequence {
	return &Sequence{next: make(map[string]int64)}
}

// Next devuelve el siguiente número para el tipo y la sede.
func (s *Sequence) Next(_ context.Context, kind, locationCode string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := kind + ":" + strings.ToUpper(locationCode)
	s.next[key]++
	return Format(kind, locationCode, s.next[key]), nil
}

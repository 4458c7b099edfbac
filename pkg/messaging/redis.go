// Package messaging은 Redis pub/sub 기반 메시지 발행/구독을 제공합니다.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient Redis pub/sub 클라이언트 인터페이스
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	// Subscribe는 여러 채널을 한 번에 구독합니다. ctx가 끝나면 반환된 채널이 닫힙니다.
	Subscribe(ctx context.Context, channels ...string) (<-chan Message, error)
	Close() error
}

// Message 수신 메시지
type Message struct {
	Channel string
	Payload []byte
	Time    time.Time
}

// Options Redis 연결 설정
type Options struct {
	Addr     string
	Password string
	DB       int
}

type redisClient struct {
	client *redis.Client
}

// NewRedisClient Redis 클라이언트를 생성하고 연결을 확인합니다.
func NewRedisClient(opts Options) (RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis 연결 실패: %w", err)
	}

	return &redisClient{client: client}, nil
}

// Publish 메시지를 JSON으로 직렬화하여 발행합니다. []byte는 그대로 발행합니다.
func (r *redisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, ok := message.([]byte)
	if !ok {
		var err error
		payload, err = json.Marshal(message)
		if err != nil {
			return fmt.Errorf("메시지 직렬화 실패: %w", err)
		}
	}

	return r.client.Publish(ctx, channel, payload).Err()
}

func (r *redisClient) Subscribe(ctx context.Context, channels ...string) (<-chan Message, error) {
	pubsub := r.client.Subscribe(ctx, channels...)

	// 구독 확인
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("채널 구독 실패: %w", err)
	}

	messageCh := make(chan Message)
	go func() {
		defer close(messageCh)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case messageCh <- Message{
					Channel: msg.Channel,
					Payload: []byte(msg.Payload),
					Time:    time.Now(),
				}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return messageCh, nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}

package session

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vera-byte/vgo-booking/pkg/model"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	jwtIssuer = "vgo-booking"
	sealInfo  = "vgo-booking session payload"
)

// payload 加密后放入声明的会话内容
type payload struct {
	AccessToken string     `json:"at"`
	User        model.User `json:"user"`
}

// claims 会话Cookie中携带的声明
// Sealed 为 XChaCha20-Poly1305 密文，客户端无法读取后端令牌与用户信息
type claims struct {
	Sealed string `json:"sealed"`
	jwt.RegisteredClaims
}

// JWTStore 无状态会话存储，会话内容加密并签名后保存在客户端Cookie中
type JWTStore struct {
	secret []byte
	aead   cipher.AEAD
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTStore 创建JWT会话存储
// 签名密钥与加密密钥均由 secret 派生
func NewJWTStore(secret string, ttl time.Duration) *JWTStore {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealInfo)), key); err != nil {
		panic(err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		panic(err)
	}
	return &JWTStore{
		secret: []byte(secret),
		aead:   aead,
		ttl:    ttl,
		now:    time.Now,
	}
}

// seal 加密会话内容，会话ID作为附加数据绑定到令牌
func (s *JWTStore) seal(id string, p payload) (string, error) {
	plain, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "marshal session payload")
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "generate nonce")
	}
	return base64.RawURLEncoding.EncodeToString(s.aead.Seal(nonce, nonce, plain, []byte(id))), nil
}

func (s *JWTStore) open(id, sealed string) (payload, error) {
	var p payload
	data, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(data) < s.aead.NonceSize() {
		return p, ErrNotFound
	}
	nonce, ciphertext := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(id))
	if err != nil {
		return p, ErrNotFound
	}
	if err := json.Unmarshal(plain, &p); err != nil {
		return p, ErrNotFound
	}
	return p, nil
}

// Create 签发会话令牌
func (s *JWTStore) Create(ctx context.Context, accessToken string, user model.User) (string, *Session, error) {
	now := s.now()
	sess := &Session{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		User:        user,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	sealed, err := s.seal(sess.ID, payload{AccessToken: accessToken, User: user})
	if err != nil {
		return "", nil, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Sealed: sealed,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, errors.Wrap(err, "sign session token")
	}
	return signed, sess, nil
}

// Get 校验签名与有效期并还原会话
func (s *JWTStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(jwtIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrNotFound
	}
	p, err := s.open(c.ID, c.Sealed)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:          c.ID,
		AccessToken: p.AccessToken,
		User:        p.User,
	}
	if c.IssuedAt != nil {
		sess.CreatedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		sess.ExpiresAt = c.ExpiresAt.Time
	}
	return sess, nil
}

// Delete 无状态存储无需服务端操作，由调用方清除Cookie
func (s *JWTStore) Delete(ctx context.Context, token string) error {
	return nil
}

package evaluator

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/secondlayerco/jsonata/pkg/types"
)

// Digest builtins: $hash and $hmac return lowercase hex digests. md5 and
// sha1 are kept for compatibility with data pipelines that still key on
// them, not for security.

func newDigest(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "md5":
		return md5.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, types.NewError(types.ErrArgumentCountMismatch,
			"unsupported digest algorithm "+algorithm+"; use md5, sha1, sha256, sha384, or sha512")
	}
}

func fnHash(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, "$hash")
	if err != nil {
		return nil, err
	}
	algorithm, err := stringArgAt(args, 1, "$hash")
	if err != nil {
		return nil, err
	}
	h, err := newDigest(algorithm)
	if err != nil {
		return nil, err
	}
	h.Write([]byte(str))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func fnHMAC(ctx context.Context, e *Evaluator, env *Environment, args []interface{}) (interface{}, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := stringArgAt(args, 0, "$hmac")
	if err != nil {
		return nil, err
	}
	key, err := stringArgAt(args, 1, "$hmac")
	if err != nil {
		return nil, err
	}
	algorithm, err := stringArgAt(args, 2, "$hmac")
	if err != nil {
		return nil, err
	}

	var constructor func() hash.Hash
	switch strings.ToLower(algorithm) {
	case "md5":
		constructor = md5.New
	case "sha1":
		constructor = sha1.New
	case "sha256":
		constructor = sha256.New
	case "sha384":
		constructor = sha512.New384
	case "sha512":
		constructor = sha512.New
	default:
		return nil, types.NewError(types.ErrArgumentCountMismatch,
			"unsupported digest algorithm "+algorithm+"; use md5, sha1, sha256, sha384, or sha512")
	}
	mac := hmac.New(constructor, []byte(key))
	mac.Write([]byte(str))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

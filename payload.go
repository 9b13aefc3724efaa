package savestate

import (
	"encoding/base64"
	"fmt"

	"github.com/AndrewDonelson/savestate/internal/codec"
	"github.com/golang/snappy"
)

// pipeline describes how one payload is encoded on disk. It is taken from
// the live config on save and from the metadata record on load.
type pipeline struct {
	Format     Format
	Compressed bool
	Encrypted  bool
}

// encodePayload runs v through codec, compression and cipher.
func encodePayload(p pipeline, ciph *PassphraseCipher, v any) (string, error) {
	text, err := encodeValue(p.Format, v)
	if err != nil {
		return "", err
	}
	return seal(p, ciph, text)
}

// decodePayload reverses encodePayload into dest.
func decodePayload(p pipeline, ciph *PassphraseCipher, payload string, dest any) error {
	if _, err := p.Format.codec(); err != nil {
		return err
	}
	text, err := unseal(p, ciph, payload)
	if err != nil {
		return err
	}
	return decodeValue(p.Format, text, dest)
}

// encodeValue is the codec stage: v to its textual codec form.
func encodeValue(f Format, v any) (string, error) {
	c, err := f.codec()
	if err != nil {
		return "", err
	}
	s, err := codec.EncodeString(c, v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return s, nil
}

func decodeValue(f Format, text string, dest any) error {
	c, err := f.codec()
	if err != nil {
		return err
	}
	if err := codec.DecodeString(c, text, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return nil
}

// seal applies the optional compression and encryption stages.
func seal(p pipeline, ciph *PassphraseCipher, text string) (string, error) {
	if p.Compressed {
		text = base64.StdEncoding.EncodeToString(snappy.Encode(nil, []byte(text)))
	}
	if p.Encrypted {
		if ciph == nil {
			return "", ErrNoEncryptionKey
		}
		return ciph.EncryptString(text)
	}
	return text, nil
}

func unseal(p pipeline, ciph *PassphraseCipher, payload string) (string, error) {
	s := payload
	if p.Encrypted {
		if ciph == nil {
			return "", ErrNoEncryptionKey
		}
		var err error
		if s, err = ciph.DecryptString(s); err != nil {
			return "", err
		}
	}
	if p.Compressed {
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", fmt.Errorf("%w: compressed payload: %v", ErrDecodeFailed, err)
		}
		plain, err := snappy.Decode(nil, raw)
		if err != nil {
			return "", fmt.Errorf("%w: compressed payload: %v", ErrDecodeFailed, err)
		}
		s = string(plain)
	}
	return s, nil
}

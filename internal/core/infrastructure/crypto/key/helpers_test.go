package key

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/btcsuite/btcd/btcec/v2"
)

func marshalSEC1(k *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalECPrivateKey(k)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemSEC1, Bytes: der}), nil
}

func encodePEM(block *pem.Block) []byte {
	return pem.EncodeToMemory(block)
}

func publicEqual(a, b crypto.PublicKey) bool {
	if ka, ok := a.(*btcec.PublicKey); ok {
		kb, ok := b.(*btcec.PublicKey)
		return ok && ka.IsEqual(kb)
	}
	eq, ok := a.(interface{ Equal(crypto.PublicKey) bool })
	return ok && eq.Equal(b)
}

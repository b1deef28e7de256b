package erc20

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const tokenABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

// Some early tokens (MKR, SAI) return symbol as bytes32.
const tokenABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	tokenABI            abi.ABI
	tokenABIOnce        sync.Once
	tokenABIErr         error
	tokenABIBytes32     abi.ABI
	tokenABIBytes32Once sync.Once
	tokenABIBytes32Err  error
)

// TokenABI returns the parsed ERC20 subset used for metadata reads.
func TokenABI() (abi.ABI, error) {
	tokenABIOnce.Do(func() {
		tokenABI, tokenABIErr = abi.JSON(strings.NewReader(tokenABIJSON))
	})
	return tokenABI, tokenABIErr
}

func tokenABIBytes32Instance() (abi.ABI, error) {
	tokenABIBytes32Once.Do(func() {
		tokenABIBytes32, tokenABIBytes32Err = abi.JSON(strings.NewReader(tokenABIBytes32JSON))
	})
	return tokenABIBytes32, tokenABIBytes32Err
}

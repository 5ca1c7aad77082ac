package chain

// Minimal ABI fragments for the two deployed contracts. Only the entry points
// and events the gateway uses are declared; the full contract surface lives in
// the contract repository.

const tokenContractABI = `[
  {
    "type": "function",
    "name": "mintProductNFT",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "recipient", "type": "address"},
      {"name": "productInfo", "type": "string"}
    ],
    "outputs": [{"name": "", "type": "uint256"}]
  },
  {
    "type": "function",
    "name": "safeTransferFrom",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "from", "type": "address"},
      {"name": "to", "type": "address"},
      {"name": "tokenId", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "ownerOf",
    "stateMutability": "view",
    "inputs": [{"name": "tokenId", "type": "uint256"}],
    "outputs": [{"name": "", "type": "address"}]
  },
  {
    "type": "function",
    "name": "getAllContractTokens",
    "stateMutability": "view",
    "inputs": [],
    "outputs": [{"name": "", "type": "uint256[]"}]
  },
  {
    "type": "event",
    "name": "ProductMinted",
    "anonymous": false,
    "inputs": [
      {"name": "tokenId", "type": "uint256", "indexed": true},
      {"name": "owner", "type": "address", "indexed": true},
      {"name": "productInfo", "type": "string", "indexed": false}
    ]
  }
]`

const escrowContractABI = `[
  {
    "type": "function",
    "name": "initiatePayment",
    "stateMutability": "payable",
    "inputs": [
      {"name": "productId", "type": "uint256"},
      {"name": "seller", "type": "address"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "approvePayment",
    "stateMutability": "nonpayable",
    "inputs": [{"name": "productId", "type": "uint256"}],
    "outputs": []
  },
  {
    "type": "function",
    "name": "rejectPayment",
    "stateMutability": "nonpayable",
    "inputs": [{"name": "productId", "type": "uint256"}],
    "outputs": []
  }
]`

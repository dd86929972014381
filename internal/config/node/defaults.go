package node

const (
	// defaultNodeID 单节点开发集群的默认节点ID
	defaultNodeID = "bdb-node-1"

	defaultAddress = "127.0.0.1"

	defaultPort = 6001

	defaultCertificatePath = "./crypto/node/bdb-node-1.pem"

	defaultKeyPath = "./crypto/node/bdb-node-1.key"
)

package bootstrap

const (
	defaultAdminID = "admin"

	defaultAdminCertificatePath = "./crypto/users/admin.pem"

	defaultRootCACertPath = "./crypto/ca/ca.pem"

	defaultConsensusAlgorithm = "raft"

	defaultRaftID = 1

	defaultPeerPort = 7050
)

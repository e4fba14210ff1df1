package jobs

import "fmt"

// Storage layout: every job lives under its tenant prefix so per-tenant scans
// and access control stay a prefix match.
//
//	{client}/generations/{jobID}/metadata.json
//	{client}/generations/{jobID}/output.mp4
//	{client}/generations/{jobID}/image-{n}.png

func MetadataKey(clientID, jobID string) string {
	return fmt.Sprintf("%s/generations/%s/metadata.json", clientID, jobID)
}

func VideoArtifactKey(clientID, jobID string) string {
	return fmt.Sprintf("%s/generations/%s/output.mp4", clientID, jobID)
}

func ImageArtifactKey(clientID, jobID string, index int) string {
	return fmt.Sprintf("%s/generations/%s/image-%d.png", clientID, jobID, index)
}

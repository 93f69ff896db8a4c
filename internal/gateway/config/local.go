package config

// localMediaConfig archives to the MinIO container of the local compose
// stack only when an endpoint is configured; otherwise media stays in memory.
func localMediaConfig(src source) MediaConfig {
	endpoint := src.get("MEDIA_MINIO_ENDPOINT")
	return MediaConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(src.get("MEDIA_S3_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(src.get("MEDIA_S3_ACCESS_KEY"), "kisanmitra"),
		SecretKey: firstNonEmpty(src.get("MEDIA_S3_SECRET_KEY"), "kisanmitra123"),
		Bucket:    firstNonEmpty(src.get("MEDIA_S3_BUCKET"), "kisanmitra-media"),
		UseSSL:    false,
	}
}

// Package clientcli provides a client library for a sharelink server.
//
// It uploads files for a user, lists a user's files, asks the server for
// time-limited download links, and downloads through those links. Profiles
// stored in a YAML file manage connections to multiple servers.
//
// # Basic Usage
//
// Create a client, upload a file and share it:
//
//	client, err := clientcli.New(&clientcli.Config{
//		Endpoint: "http://localhost:5708",
//		UserID:   "alice",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.Upload(ctx, clientcli.UploadOptions{LocalPath: "./report.pdf"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	link, err := client.Sign(ctx, clientcli.SignOptions{
//		FileID: results[0].FileID,
//		TTL:    10 * time.Minute,
//	})
//
// Anyone holding link.SignedURL can fetch the file until it expires:
//
//	result, _, err := client.Download(ctx, clientcli.DownloadOptions{SignedURL: link.SignedURL})
//
// # Profile Configuration
//
// Use profiles to manage multiple server configurations:
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, results)
package clientcli

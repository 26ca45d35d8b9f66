package drive

// WebURL returns the link shown for a Drive file. The API's webViewLink is
// preferred; otherwise a generic viewer URL is built from the file ID.
func WebURL(fileID, webViewLink string) string {
	if webViewLink != "" {
		return webViewLink
	}
	if fileID == "" {
		return ""
	}
	return "https://drive.google.com/file/d/" + fileID + "/view"
}

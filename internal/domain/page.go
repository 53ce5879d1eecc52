package domain

// PageFile 是扫描得到的一个待解析页面文件。
type PageFile struct {
	AbsPath string
	// RelPath 相对扫描根，使用 '/' 分隔；也是 report 与缓存中的稳定键。
	RelPath string
	Size    int64
	ModUnix int64
}

package modules

import "github.com/gin-gonic/gin"

// ImagesModule serves stored images from the local image directory.
type ImagesModule struct {
	Prefix string
	Dir    string
}

func NewImagesModule(prefix, dir string) *ImagesModule {
	return &ImagesModule{Prefix: prefix, Dir: dir}
}

func (m *ImagesModule) Register(rg *gin.RouterGroup) {
	rg.Static(m.Prefix, m.Dir)
}

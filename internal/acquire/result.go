package acquire

import (
	"github.com/ZebulonRouseFrantzich/browserctl/internal/binary"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/devtools"
	"github.com/ZebulonRouseFrantzich/browserctl/internal/launcher"
)

// Result is the browser handed out by Acquire. It is either a
// *SystemBrowser or a *LocalBrowser.
type Result interface {
	Handle() devtools.Handle
	result()
}

// SystemBrowser is a host browser started out of band. The connection does
// not own the process; Terminate kills it by PID.
type SystemBrowser struct {
	handle  devtools.Handle
	Process *launcher.Process
}

func (b *SystemBrowser) Handle() devtools.Handle { return b.handle }
func (*SystemBrowser) result()                   {}

// LocalBrowser is the cached headless shell, started and owned by its
// connection.
type LocalBrowser struct {
	handle  devtools.Handle
	Browser binary.InstalledBrowser
}

func (b *LocalBrowser) Handle() devtools.Handle { return b.handle }
func (*LocalBrowser) result()                   {}

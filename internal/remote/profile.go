package remote

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/ini.v1"

	"github.com/tabsync/tabsync/internal/model1"
)

const (
	// EnvProfile names the profile to use when none is given.
	EnvProfile = "TABSYNC_PROFILE"
	// DefaultProfile is the profile read from the [default] section.
	DefaultProfile = "default"
)

type ProfileSettings interface {
	CurrentProfileName() (string, error)
	ProfileNames() []string
	GetProfile(name string) (*Profile, error)
	SetActiveProfile(profile string) error
}

// Profile describes one upstream service.
type Profile struct {
	Name     string
	URL      string
	Timeout  time.Duration
	PageSize int
}

// ClientConfig returns the client configuration of the profile.
func (p *Profile) ClientConfig() *ClientConfig {
	return &ClientConfig{BaseURL: p.URL, Timeout: p.Timeout}
}

type ProfileManager struct {
	profiles      map[string]*Profile
	activeProfile string
	mx            sync.RWMutex
}

var _ ProfileSettings = (*ProfileManager)(nil)

// NewProfileManager loads the profiles of an INI file. Profiles live in
// [default] and [profile NAME] sections. A missing file yields no profiles.
func NewProfileManager(path string) (*ProfileManager, error) {
	m := &ProfileManager{
		profiles:      make(map[string]*Profile),
		activeProfile: DefaultProfile,
	}
	if env := os.Getenv(EnvProfile); env != "" {
		m.activeProfile = env
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to access profiles file: %w", err)
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles file: %w", err)
	}

	for _, section := range f.Sections() {
		name, ok := profileName(section.Name())
		if !ok || len(section.Keys()) == 0 {
			continue
		}
		p, err := loadProfile(name, section)
		if err != nil {
			return nil, err
		}
		m.profiles[name] = p
	}

	return m, nil
}

func profileName(section string) (string, bool) {
	switch {
	case strings.EqualFold(section, ini.DefaultSection), section == DefaultProfile:
		return DefaultProfile, true
	case strings.HasPrefix(section, "profile "):
		name := strings.TrimSpace(strings.TrimPrefix(section, "profile "))
		return name, name != ""
	default:
		return "", false
	}
}

func loadProfile(name string, section *ini.Section) (*Profile, error) {
	p := Profile{Name: name}
	if section.HasKey("url") {
		p.URL = section.Key("url").String()
	}
	if section.HasKey("timeout") {
		d, err := section.Key("timeout").Duration()
		if err != nil {
			return nil, fmt.Errorf("profile %q: invalid timeout: %w", name, err)
		}
		p.Timeout = d
	}
	if section.HasKey("page_size") {
		n, err := section.Key("page_size").Int()
		if err != nil || n <= 0 || n > model1.MaxPageSize {
			return nil, fmt.Errorf("profile %q: page_size must be within 1..%d", name, model1.MaxPageSize)
		}
		p.PageSize = n
	}

	return &p, nil
}

// CurrentProfileName returns the name of the currently active profile.
func (m *ProfileManager) CurrentProfileName() (string, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	if _, ok := m.profiles[m.activeProfile]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidProfile, m.activeProfile)
	}

	return m.activeProfile, nil
}

// ProfileNames returns the known profile names in natural order.
func (m *ProfileManager) ProfileNames() []string {
	m.mx.RLock()
	defer m.mx.RUnlock()

	names := make([]string, 0, len(m.profiles))
	for name := range m.profiles {
		names = append(names, name)
	}
	model1.SortNatural(names)

	return names
}

// GetProfile retrieves a copy of a profile by name.
func (m *ProfileManager) GetProfile(name string) (*Profile, error) {
	m.mx.RLock()
	defer m.mx.RUnlock()

	p, ok := m.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProfile, name)
	}
	cp := *p

	return &cp, nil
}

// ActiveProfile returns the currently active profile.
func (m *ProfileManager) ActiveProfile() (*Profile, error) {
	name, err := m.CurrentProfileName()
	if err != nil {
		return nil, err
	}
	return m.GetProfile(name)
}

// SetActiveProfile sets the currently active profile.
func (m *ProfileManager) SetActiveProfile(profile string) error {
	m.mx.Lock()
	defer m.mx.Unlock()

	if _, ok := m.profiles[profile]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidProfile, profile)
	}
	m.activeProfile = profile

	return nil
}

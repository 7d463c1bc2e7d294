package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var (
	_ port.UserRepository    = (*FileAdapter)(nil)
	_ port.ProductRepository = (*FileAdapter)(nil)
)

// formatVersion is bumped whenever the record layout changes. A store written
// with another version is refused instead of being half read.
const formatVersion = 1

var ErrIncompatibleStore = errors.New("incompatible store format")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("storage: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("storage: CBOR decoder initialization failed: " + err.Error())
	}
}

type userRecord struct {
	Username string `cbor:"username"`
	Password string `cbor:"password"`
	Role     string `cbor:"role"`
}

type productRecord struct {
	ID       int    `cbor:"id"`
	Name     string `cbor:"name"`
	Price    string `cbor:"price"`
	Quantity int    `cbor:"quantity"`
}

type usersFile struct {
	Version int          `cbor:"version"`
	Users   []userRecord `cbor:"users"`
}

type productsFile struct {
	Version  int             `cbor:"version"`
	Products []productRecord `cbor:"products"`
}

// FileAdapter keeps users and products in two CBOR files. Every save
// rewrites the whole file through a temporary file and a rename, so a reader
// sees either the previous or the new collection.
type FileAdapter struct {
	usersPath    string
	productsPath string
}

func NewFileAdapter(usersPath, productsPath string) *FileAdapter {
	return &FileAdapter{usersPath: usersPath, productsPath: productsPath}
}

func (f *FileAdapter) UsersExist(ctx context.Context) (bool, error) {
	_, err := os.Stat(f.usersPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat users file: %w", err)
	}
	return true, nil
}

func (f *FileAdapter) LoadUsers(ctx context.Context) ([]domain.User, error) {
	var file usersFile
	found, err := readFile(f.usersPath, &file)
	if err != nil || !found {
		return []domain.User{}, err
	}
	if file.Version != formatVersion {
		return nil, fmt.Errorf("%w: users file version %d", ErrIncompatibleStore, file.Version)
	}

	users := make([]domain.User, 0, len(file.Users))
	for _, r := range file.Users {
		role, ok := domain.ParseRole(r.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrIncompatibleStore, r.Role)
		}
		users = append(users, domain.User{Username: r.Username, Password: r.Password, Role: role})
	}
	return users, nil
}

func (f *FileAdapter) SaveUsers(ctx context.Context, users []domain.User) error {
	file := usersFile{Version: formatVersion, Users: make([]userRecord, 0, len(users))}
	for _, u := range users {
		file.Users = append(file.Users, userRecord{Username: u.Username, Password: u.Password, Role: string(u.Role)})
	}
	return writeFile(f.usersPath, file)
}

func (f *FileAdapter) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	var file productsFile
	found, err := readFile(f.productsPath, &file)
	if err != nil || !found {
		return []domain.Product{}, err
	}
	if file.Version != formatVersion {
		return nil, fmt.Errorf("%w: products file version %d", ErrIncompatibleStore, file.Version)
	}

	products := make([]domain.Product, 0, len(file.Products))
	for _, r := range file.Products {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: price of %q: %v", ErrIncompatibleStore, r.Name, err)
		}
		products = append(products, domain.Product{ID: r.ID, Name: r.Name, Price: price, Quantity: r.Quantity})
	}
	return products, nil
}

func (f *FileAdapter) SaveProducts(ctx context.Context, products []domain.Product) error {
	file := productsFile{Version: formatVersion, Products: make([]productRecord, 0, len(products))}
	for _, p := range products {
		file.Products = append(file.Products, productRecord{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price.String(),
			Quantity: p.Quantity,
		})
	}
	return writeFile(f.productsPath, file)
}

// readFile decodes path into v. A missing file is not an error.
func readFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := decMode.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", ErrIncompatibleStore, path, err)
	}
	return true, nil
}

func writeFile(path string, v any) error {
	data, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("sync temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("rename %s into place: %w", path, err)
	}

	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		dir.Sync()
		dir.Close()
	}
	return nil
}

package fakeapi

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-drive-client/internal/crypto"
	"github.com/MKhiriev/go-drive-client/internal/utils"
	"github.com/MKhiriev/go-drive-client/models"
)

// Package is a subscription plan. MaxStorage bounds both a single upload
// and the total stored size.
type Package struct {
	ID         int64
	Name       string
	Price      string
	MaxStorage int64
	Chat       bool
	Image      bool
}

// DefaultPackages are the plans a new server offers. New accounts get the
// first one.
var DefaultPackages = []Package{
	{ID: 1, Name: "Free", Price: "0.00", MaxStorage: 10 << 20},
	{ID: 2, Name: "Basic", Price: "4.99", MaxStorage: 100 << 20, Chat: true},
	{ID: 3, Name: "Pro", Price: "9.99", MaxStorage: 1 << 30, Chat: true, Image: true},
}

// chatHistoryLimit is how many turns the assistant keeps.
const chatHistoryLimit = 15

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type account struct {
	id           string
	username     string
	firstName    string
	lastName     string
	email        string
	phone        string
	passwordHash []byte
	packageID    int64
	// conversation is the sealed chat history, empty when none is stored.
	conversation string
}

func (a *account) name() string {
	return strings.TrimSpace(a.firstName + " " + a.lastName)
}

type folderRecord struct {
	id        string
	owner     string
	name      string
	link      string
	createdAt time.Time
	seq       uint64
}

type fileRecord struct {
	id        string
	owner     string
	folderID  string
	filename  string
	link      string
	content   []byte
	createdAt time.Time
	seq       uint64
}

type transaction struct {
	orderID   string
	owner     string
	packageID int64
	amount    string
	status    string
}

// state is the whole server data set behind one mutex.
type state struct {
	mu sync.Mutex

	packages     []Package
	accounts     map[string]*account
	usernames    map[string]string
	folders      map[string]*folderRecord
	files        map[string]*fileRecord
	transactions map[string]*transaction

	ids    *utils.UUIDGenerator
	sealer *crypto.Sealer
	now    func() time.Time
	seq    uint64
	// bcryptCost is lowered by tests.
	bcryptCost int
}

func newState(packages []Package, sealer *crypto.Sealer) *state {
	if len(packages) == 0 {
		packages = DefaultPackages
	}
	return &state{
		packages:     append([]Package(nil), packages...),
		accounts:     make(map[string]*account),
		usernames:    make(map[string]string),
		folders:      make(map[string]*folderRecord),
		files:        make(map[string]*fileRecord),
		transactions: make(map[string]*transaction),
		ids:          utils.NewUUIDGenerator(),
		sealer:       sealer,
		now:          time.Now,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

func (s *state) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *state) packageByID(id int64) (Package, bool) {
	for _, p := range s.packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

func (s *state) accountPackage(a *account) Package {
	p, ok := s.packageByID(a.packageID)
	if !ok {
		return s.packages[0]
	}
	return p
}

// ── accounts ────────────────────────────────────────────────────────────────

func (s *state) register(req models.RegisterRequest) (*account, error) {
	fields := FieldErrors{}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" {
		fields.add("username", "This field is required.")
	}
	if email == "" {
		fields.add("email", "This field is required.")
	} else if !emailPattern.MatchString(email) {
		fields.add("email", "Enter a valid email address.")
	}
	if req.Password == "" {
		fields.add("password", "This field is required.")
	}
	if req.Password != req.Password2 {
		fields.add("password", "Password fields didn't match.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[username]; username != "" && taken {
		fields.add("username", "A user with that username already exists.")
	}
	if len(fields) > 0 {
		return nil, fields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &account{
		id:           s.ids.Generate(),
		username:     username,
		firstName:    strings.TrimSpace(req.FirstName),
		lastName:     strings.TrimSpace(req.LastName),
		email:        email,
		phone:        strings.TrimSpace(req.Phone),
		passwordHash: hash,
		packageID:    s.packages[0].ID,
	}
	s.accounts[a.id] = a
	s.usernames[a.username] = a.id
	return a, nil
}

func (s *state) authenticate(username, password string) (string, error) {
	s.mu.Lock()
	id, ok := s.usernames[username]
	var hash []byte
	if ok {
		hash = s.accounts[id].passwordHash
	}
	s.mu.Unlock()

	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return id, nil
}

func (s *state) exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[id]
	return ok
}

func (s *state) profile(id string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return models.Profile{}, ErrTokenNotValid
	}
	return s.profileOf(a), nil
}

func (s *state) profileOf(a *account) models.Profile {
	p := s.accountPackage(a)
	return models.Profile{
		Username:    a.username,
		Name:        a.name(),
		Email:       a.email,
		Phone:       a.phone,
		PackageName: p.Name,
		MaxStorage:  models.FlexInt(p.MaxStorage),
		Chat:        models.FlexBool(p.Chat),
		ImageGen:    models.FlexBool(p.Image),
	}
}

func (s *state) updateProfile(id string, update models.ProfileUpdate) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return models.Profile{}, ErrTokenNotValid
	}

	if update.Username != "" && update.Username != a.username {
		if _, taken := s.usernames[update.Username]; taken {
			return models.Profile{}, FieldErrors{"username": {"A user with that username already exists."}}
		}
		delete(s.usernames, a.username)
		a.username = update.Username
		s.usernames[a.username] = a.id
	}
	if update.FirstName != "" {
		a.firstName = update.FirstName
	}
	if update.LastName != "" {
		a.lastName = update.LastName
	}
	if update.Phone != "" {
		a.phone = update.Phone
	}
	return s.profileOf(a), nil
}

func (s *state) permissions(id string) (models.Permissions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return models.Permissions{}, ErrTokenNotValid
	}
	p := s.accountPackage(a)
	return models.Permissions{Chat: p.Chat, Image: p.Image}, nil
}

// ── storage ─────────────────────────────────────────────────────────────────

func (s *state) usedBytes(owner string) int64 {
	var used int64
	for _, f := range s.files {
		if f.owner == owner {
			used += int64(len(f.content))
		}
	}
	return used
}

func toMB(b int64) string {
	return strconv.FormatFloat(math.Round(float64(b)/(1<<20)*100)/100, 'f', -1, 64) + " MB"
}

func (s *state) usage(id string) (models.StorageUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return models.StorageUsage{}, ErrTokenNotValid
	}

	total := s.accountPackage(a).MaxStorage
	used := s.usedBytes(id)
	remaining := max(total-used, 0)

	var pct float64
	if total > 0 {
		pct = math.Round(float64(used)/float64(total)*100*100) / 100
	}
	return models.StorageUsage{
		Used:           toMB(used),
		Remaining:      toMB(remaining),
		Total:          toMB(total),
		UsedPercentage: pct,
	}, nil
}

func (s *state) createFolder(owner, name string) (*folderRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrFolderNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := &folderRecord{
		id:        s.ids.Generate(),
		owner:     owner,
		name:      name,
		link:      s.ids.Generate(),
		createdAt: s.now().UTC(),
		seq:       s.nextSeq(),
	}
	s.folders[f.id] = f
	return f, nil
}

func (s *state) storeFile(owner, folderID, filename string, content []byte) (*fileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[owner]
	if !ok {
		return nil, ErrTokenNotValid
	}

	limit := s.accountPackage(a).MaxStorage
	size := int64(len(content))
	if size > limit {
		return nil, newError(ErrQuotaExceeded.Status,
			fmt.Sprintf("File too large. Max size for %s is %s", s.accountPackage(a).Name, toMB(limit)))
	}
	if s.usedBytes(owner)+size > limit {
		return nil, ErrQuotaExceeded
	}

	if folderID != "" {
		folder, ok := s.folders[folderID]
		if !ok || folder.owner != owner {
			return nil, ErrFolderNotFound
		}
	}

	f := &fileRecord{
		id:        s.ids.Generate(),
		owner:     owner,
		folderID:  folderID,
		filename:  filename,
		link:      s.ids.Generate(),
		content:   content,
		createdAt: s.now().UTC(),
		seq:       s.nextSeq(),
	}
	s.files[f.id] = f
	return f, nil
}

// deleteFolder removes the folder and every file inside it.
func (s *state) deleteFolder(owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[id]
	if !ok || folder.owner != owner {
		return ErrFolderNotFound
	}
	for fid, f := range s.files {
		if f.folderID == id {
			delete(s.files, fid)
		}
	}
	delete(s.folders, id)
	return nil
}

func (s *state) deleteFile(owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok || f.owner != owner {
		return ErrFileNotFound
	}
	delete(s.files, id)
	return nil
}

// listing returns the owner's folders, each with its files, and the files
// in the root, in creation order. linkURL renders share links.
func (s *state) listing(owner string, linkURL func(kind models.ItemKind, link string) string) models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	folders := make([]*folderRecord, 0)
	for _, f := range s.folders {
		if f.owner == owner {
			folders = append(folders, f)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].seq < folders[j].seq })

	files := s.sortedFiles(func(f *fileRecord) bool { return f.owner == owner })

	listing := models.Listing{Folders: make([]models.Folder, 0, len(folders)), Files: make([]models.File, 0)}
	nested := make(map[string][]models.File)
	for _, f := range files {
		if f.folderID == "" {
			listing.Files = append(listing.Files, fileView(f, linkURL))
			continue
		}
		nested[f.folderID] = append(nested[f.folderID], fileView(f, linkURL))
	}
	for _, f := range folders {
		view := folderView(f, linkURL)
		if n := nested[f.id]; n != nil {
			view.Files = n
		}
		listing.Folders = append(listing.Folders, view)
	}
	return listing
}

func (s *state) sortedFiles(keep func(f *fileRecord) bool) []*fileRecord {
	files := make([]*fileRecord, 0)
	for _, f := range s.files {
		if keep(f) {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].seq < files[j].seq })
	return files
}

func fileView(f *fileRecord, linkURL func(models.ItemKind, string) string) models.File {
	view := models.File{
		ID:            f.id,
		Filename:      f.filename,
		UniqueLink:    f.link,
		UniqueLinkURL: linkURL(models.ItemKindFile, f.link),
		FileURL:       linkURL(models.ItemKindFile, f.link),
		Size:          int64(len(f.content)),
		UploadedAt:    f.createdAt,
	}
	if f.folderID != "" {
		parent := f.folderID
		view.ParentFolder = &parent
	}
	return view
}

func folderView(f *folderRecord, linkURL func(models.ItemKind, string) string) models.Folder {
	return models.Folder{
		ID:            f.id,
		Name:          f.name,
		CreatedAt:     f.createdAt,
		Files:         []models.File{},
		UniqueLink:    f.link,
		UniqueLinkURL: linkURL(models.ItemKindFolder, f.link),
	}
}

// fileByLink returns the name and a copy of the content of a shared file.
func (s *state) fileByLink(link string) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.files {
		if f.link == link {
			return f.filename, append([]byte(nil), f.content...), nil
		}
	}
	return "", nil, ErrFileNotFound
}

type namedContent struct {
	name    string
	content []byte
}

// folderByLink returns the folder name and copies of its files.
func (s *state) folderByLink(link string) (string, []namedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var folder *folderRecord
	for _, f := range s.folders {
		if f.link == link {
			folder = f
			break
		}
	}
	if folder == nil {
		return "", nil, ErrFolderNotFound
	}

	files := s.sortedFiles(func(f *fileRecord) bool { return f.folderID == folder.id })
	if len(files) == 0 {
		return "", nil, ErrEmptyFolder
	}
	out := make([]namedContent, 0, len(files))
	for _, f := range files {
		out = append(out, namedContent{name: f.filename, content: append([]byte(nil), f.content...)})
	}
	return folder.name, out, nil
}

// ── billing ─────────────────────────────────────────────────────────────────

// chargeFor adds the 3% tax and rounds up to a whole amount.
func chargeFor(price string) string {
	p, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return "0"
	}
	return strconv.FormatFloat(math.Ceil(p*1.03), 'f', 0, 64)
}

func (s *state) initiatePayment(owner string, packageID int64) (models.PaymentOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.packageByID(packageID)
	if !ok {
		return models.PaymentOrder{}, ErrInvalidPackage
	}

	ref := s.ids.Generate()
	tx := &transaction{
		orderID:   "order_" + strings.ReplaceAll(ref, "-", "")[:12],
		owner:     owner,
		packageID: p.ID,
		amount:    chargeFor(p.Price),
		status:    models.TransactionPending,
	}
	s.transactions[tx.orderID] = tx

	return models.PaymentOrder{
		OrderID:     tx.orderID,
		PaymentLink: fmt.Sprintf("/payment?order_id=%s&amount=%s", tx.orderID, tx.amount),
		Amount:      json.Number(tx.amount),
		Package:     p.Name,
		Message:     "Payment initiated successfully",
	}, nil
}

func (s *state) settlePayment(owner, orderID, outcome string) (models.PaymentResult, error) {
	if orderID == "" || outcome == "" {
		return models.PaymentResult{}, ErrMissingOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[orderID]
	if !ok || tx.owner != owner {
		return models.PaymentResult{}, ErrTransactionNotFound
	}

	if outcome == models.PaymentSuccess {
		tx.status = models.TransactionCompleted
		if a, ok := s.accounts[owner]; ok {
			a.packageID = tx.packageID
		}
	} else {
		tx.status = models.TransactionFailed
	}

	return models.PaymentResult{
		OrderID:     orderID,
		Status:      tx.status,
		RedirectURL: fmt.Sprintf("/payment-status?order_id=%s&status=%s", orderID, outcome),
		Message:     "Payment " + tx.status,
	}, nil
}

func (s *state) packageName(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return "", ErrTokenNotValid
	}
	return s.accountPackage(a).Name, nil
}

// ── chat ────────────────────────────────────────────────────────────────────

// conversation must be called with s.mu held.
func (s *state) conversation(a *account) []models.ChatMessage {
	if a.conversation == "" {
		return []models.ChatMessage{}
	}
	var out []models.ChatMessage
	if err := s.sealer.Open(a.conversation, &out); err != nil {
		return []models.ChatMessage{}
	}
	return out
}

// storeConversation must be called with s.mu held.
func (s *state) storeConversation(a *account, conversation []models.ChatMessage) error {
	sealed, err := s.sealer.Seal(conversation)
	if err != nil {
		return fmt.Errorf("seal conversation: %w", err)
	}
	a.conversation = sealed
	return nil
}

func (s *state) feature(id string, need func(Package) bool, locked error) (*account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrTokenNotValid
	}
	if !need(s.accountPackage(a)) {
		return nil, locked
	}
	return a, nil
}

func chatEnabled(p Package) bool  { return p.Chat }
func imageEnabled(p Package) bool { return p.Image }

func (s *state) chat(id, message string, answer func(history []models.ChatMessage) string) (models.ChatReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.feature(id, chatEnabled, ErrChatDisabled)
	if err != nil {
		return models.ChatReply{}, err
	}

	conversation := append(s.conversation(a), models.ChatMessage{Role: models.RoleUser, Content: message})
	if len(conversation) > chatHistoryLimit {
		conversation = conversation[len(conversation)-chatHistoryLimit:]
	}
	reply := answer(conversation)
	conversation = append(conversation, models.ChatMessage{Role: models.RoleAssistant, Content: reply})

	if err := s.storeConversation(a, conversation); err != nil {
		return models.ChatReply{}, err
	}
	return models.ChatReply{Reply: reply, Conversation: conversation}, nil
}

func (s *state) chatHistory(id string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrTokenNotValid
	}
	return s.conversation(a), nil
}

// saveChat appends conversation to the stored one.
func (s *state) saveChat(id string, conversation []models.ChatMessage) error {
	if len(conversation) == 0 {
		return ErrConversationRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ErrTokenNotValid
	}
	return s.storeConversation(a, append(s.conversation(a), conversation...))
}

func (s *state) resetChat(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ErrTokenNotValid
	}
	a.conversation = ""
	return nil
}

func (s *state) canGenerateImage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.feature(id, imageEnabled, ErrImageDisabled)
	return err
}

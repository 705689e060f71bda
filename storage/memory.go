package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hmsdev/hospital-backend/models"
)

// MemoryStore is a map-backed Store used by the test suites. InTx snapshots
// the whole dataset and restores it when the unit of work fails, matching the
// rollback semantics of the Postgres store.
type MemoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *memData
}

type memData struct {
	seq          map[string]int
	users        map[int]models.User
	admins       map[int]models.Admin
	departments  map[int]models.Department
	doctors      map[int]models.Doctor
	patients     map[int]models.Patient
	appointments map[int]models.Appointment
	treatments   map[int]models.Treatment
	histories    map[int]models.MedicalHistory
	availability map[int]models.DoctorAvailability
	logs         []models.RequestLog
}

func newMemData() *memData {
	return &memData{
		seq:          map[string]int{},
		users:        map[int]models.User{},
		admins:       map[int]models.Admin{},
		departments:  map[int]models.Department{},
		doctors:      map[int]models.Doctor{},
		patients:     map[int]models.Patient{},
		appointments: map[int]models.Appointment{},
		treatments:   map[int]models.Treatment{},
		histories:    map[int]models.MedicalHistory{},
		availability: map[int]models.DoctorAvailability{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		seq:          cloneMap(d.seq),
		users:        cloneMap(d.users),
		admins:       cloneMap(d.admins),
		departments:  cloneMap(d.departments),
		doctors:      cloneMap(d.doctors),
		patients:     cloneMap(d.patients),
		appointments: cloneMap(d.appointments),
		treatments:   cloneMap(d.treatments),
		histories:    cloneMap(d.histories),
		availability: cloneMap(d.availability),
		logs:         append([]models.RequestLog(nil), d.logs...),
	}
}

func (d *memData) next(table string) int {
	d.seq[table]++
	return d.seq[table]
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData()}
}

// InTx serializes units of work behind a coarse transaction lock, so a
// rollback can never restore a snapshot over another transaction's committed
// writes. Nested calls join the surrounding transaction.
func (m *MemoryStore) InTx(_ context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.data.clone()
	m.mu.Unlock()

	err := fn(memTx{m})
	if err != nil {
		m.mu.Lock()
		m.data = snapshot
		m.mu.Unlock()
	}
	return err
}

// memTx is a Store already bound to a transaction; its InTx runs fn against
// the same unit of work instead of re-entering the lock.
type memTx struct {
	*MemoryStore
}

func (t memTx) InTx(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

// --- Users ---

func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.data.users {
		if existing.Username == u.Username {
			return models.ErrDuplicate
		}
	}
	u.ID = m.data.next("users")
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.data.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.data.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MemoryStore) GetUserByID(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.data.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) UpdateUserName(_ context.Context, id int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.data.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.Name = name
	u.UpdatedAt = time.Now()
	m.data.users[id] = u
	return nil
}

func (m *MemoryStore) SetUserMFA(_ context.Context, id int, enabled bool, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.data.users[id]
	if !ok {
		return models.ErrNotFound
	}
	u.MFAEnabled = enabled
	u.MFASecret = secret
	u.UpdatedAt = time.Now()
	m.data.users[id] = u
	return nil
}

// --- Admin profiles ---

func (m *MemoryStore) CreateAdmin(_ context.Context, userID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.data.next("admins")
	m.data.admins[id] = models.Admin{ID: id, UserID: userID}
	return id, nil
}

func (m *MemoryStore) GetAdminByUserID(_ context.Context, userID int) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.data.admins {
		if a.UserID == userID {
			a := a
			return &a, nil
		}
	}
	return nil, models.ErrNotFound
}

// --- Departments ---

func (m *MemoryStore) CreateDepartment(_ context.Context, d *models.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.data.departments {
		if existing.Name == d.Name {
			return models.ErrDuplicate
		}
	}
	d.ID = m.data.next("departments")
	d.CreatedAt = time.Now()
	m.data.departments[d.ID] = *d
	return nil
}

func (m *MemoryStore) UpdateDepartment(_ context.Context, id int, name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data.departments[id]
	if !ok {
		return models.ErrNotFound
	}
	if name != "" {
		for otherID, other := range m.data.departments {
			if otherID != id && other.Name == name {
				return models.ErrDuplicate
			}
		}
		d.Name = name
	}
	if description != "" {
		d.Description = description
	}
	m.data.departments[id] = d
	return nil
}

func (m *MemoryStore) GetDepartment(_ context.Context, id int) (*models.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data.departments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &d, nil
}

func (m *MemoryStore) ListDepartments(_ context.Context) ([]models.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Department
	for _, d := range m.data.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) ListDepartmentStats(_ context.Context) ([]models.DepartmentStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[int]int{}
	for _, d := range m.data.doctors {
		counts[d.DepartmentID]++
	}
	var out []models.DepartmentStats
	for _, d := range m.data.departments {
		out = append(out, models.DepartmentStats{Department: d, DoctorCount: counts[d.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Doctors ---

func (m *MemoryStore) doctorRecord(d models.Doctor) models.DoctorRecord {
	u := m.data.users[d.UserID]
	dep := m.data.departments[d.DepartmentID]
	return models.DoctorRecord{Doctor: d, Name: u.Name, Username: u.Username, DepartmentName: dep.Name}
}

func (m *MemoryStore) CreateDoctor(_ context.Context, d *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.data.doctors {
		if existing.LicenseNumber == d.LicenseNumber {
			return models.ErrDuplicate
		}
	}
	d.ID = m.data.next("doctors")
	m.data.doctors[d.ID] = *d
	return nil
}

func (m *MemoryStore) GetDoctorByID(_ context.Context, id int) (*models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data.doctors[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &d, nil
}

func (m *MemoryStore) GetDoctorByUserID(_ context.Context, userID int) (*models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.data.doctors {
		if d.UserID == userID {
			d := d
			return &d, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MemoryStore) ListDoctors(_ context.Context) ([]models.DoctorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DoctorRecord
	for _, d := range m.data.doctors {
		out = append(out, m.doctorRecord(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) RecentDoctors(ctx context.Context, limit int) ([]models.DoctorRecord, error) {
	out, err := m.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) UpdateDoctor(_ context.Context, d *models.Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.data.doctors[d.ID]
	if !ok {
		return models.ErrNotFound
	}
	existing.DepartmentID = d.DepartmentID
	existing.Specialization = d.Specialization
	existing.Qualification = d.Qualification
	existing.Experience = d.Experience
	existing.Gender = d.Gender
	m.data.doctors[d.ID] = existing
	return nil
}

func (m *MemoryStore) SetDoctorStatus(_ context.Context, doctorID int, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data.doctors[doctorID]
	if !ok {
		return models.ErrNotFound
	}
	if active {
		d.Status = "active"
	} else {
		d.Status = "inactive"
	}
	m.data.doctors[doctorID] = d

	u, ok := m.data.users[d.UserID]
	if !ok {
		return models.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	m.data.users[d.UserID] = u
	return nil
}

func (m *MemoryStore) SearchDoctors(_ context.Context, term string) ([]models.DoctorRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DoctorRecord
	for _, d := range m.data.doctors {
		r := m.doctorRecord(d)
		if containsFold(r.Name, term) || containsFold(r.Specialization, term) ||
			containsFold(r.DepartmentName, term) || containsFold(r.LicenseNumber, term) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) DoctorStats(_ context.Context, doctorID int) (*models.DoctorStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := models.DoctorStats{}
	patients := map[int]bool{}
	for _, a := range m.data.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		st.TotalAppointments++
		if a.Status == models.StatusCompleted {
			st.CompletedAppointments++
		}
		patients[a.PatientID] = true
	}
	st.TotalPatients = len(patients)
	return &st, nil
}

func (m *MemoryStore) CountDoctors(_ context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, active := 0, 0
	for _, d := range m.data.doctors {
		total++
		if d.Status == "active" {
			active++
		}
	}
	return total, active, nil
}

// --- Patients ---

func (m *MemoryStore) patientRecord(p models.Patient) models.PatientRecord {
	u := m.data.users[p.UserID]
	return models.PatientRecord{
		Patient: p, Name: u.Name, Username: u.Username, Age: models.CalculateAge(p.DOB),
	}
}

func (m *MemoryStore) CreatePatient(_ context.Context, p *models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.data.next("patients")
	m.data.patients[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetPatientByID(_ context.Context, id int) (*models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data.patients[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) GetPatientByUserID(_ context.Context, userID int) (*models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.data.patients {
		if p.UserID == userID {
			p := p
			return &p, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MemoryStore) ListPatients(_ context.Context) ([]models.PatientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PatientRecord
	for _, p := range m.data.patients {
		out = append(out, m.patientRecord(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) RecentPatients(ctx context.Context, limit int) ([]models.PatientRecord, error) {
	out, err := m.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) SetPatientActive(_ context.Context, patientID int, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data.patients[patientID]
	if !ok {
		return models.ErrNotFound
	}
	p.IsActive = active
	m.data.patients[patientID] = p

	u, ok := m.data.users[p.UserID]
	if !ok {
		return models.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	m.data.users[p.UserID] = u
	return nil
}

func (m *MemoryStore) SearchPatients(_ context.Context, term string) ([]models.PatientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PatientRecord
	for _, p := range m.data.patients {
		r := m.patientRecord(p)
		if containsFold(r.Name, term) || containsFold(r.Username, term) || containsFold(r.BloodGroup, term) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) ListDoctorPatients(_ context.Context, doctorID int) ([]models.DoctorPatient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	type visit struct {
		count int
		last  time.Time
	}
	visits := map[int]*visit{}
	for _, a := range m.data.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		v, ok := visits[a.PatientID]
		if !ok {
			v = &visit{}
			visits[a.PatientID] = v
		}
		v.count++
		if a.Date.After(v.last) {
			v.last = a.Date
		}
	}
	var out []models.DoctorPatient
	for pid, v := range visits {
		p, ok := m.data.patients[pid]
		if !ok {
			continue
		}
		last := v.last
		out = append(out, models.DoctorPatient{
			PatientRecord:    m.patientRecord(p),
			AppointmentCount: v.count,
			LastVisit:        &last,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastVisit.After(*out[j].LastVisit) })
	return out, nil
}

func (m *MemoryStore) CountPatients(_ context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, active := 0, 0
	for _, p := range m.data.patients {
		total++
		if p.IsActive {
			active++
		}
	}
	return total, active, nil
}

// --- Appointments ---

func matchesFilter(a models.Appointment, f models.AppointmentFilter) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.DoctorID != 0 && a.DoctorID != f.DoctorID {
		return false
	}
	if f.PatientID != 0 && a.PatientID != f.PatientID {
		return false
	}
	if !f.DateFrom.IsZero() && a.Date.Before(DateOnly(f.DateFrom)) {
		return false
	}
	if !f.DateTo.IsZero() && a.Date.After(DateOnly(f.DateTo)) {
		return false
	}
	return true
}

func (m *MemoryStore) appointmentRecord(a models.Appointment) models.AppointmentRecord {
	r := models.AppointmentRecord{Appointment: a}
	if p, ok := m.data.patients[a.PatientID]; ok {
		r.PatientName = m.data.users[p.UserID].Name
	}
	if d, ok := m.data.doctors[a.DoctorID]; ok {
		r.DoctorName = m.data.users[d.UserID].Name
	}
	return r
}

func (m *MemoryStore) CreateAppointment(_ context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.data.appointments {
		if existing.AppointmentNumber == a.AppointmentNumber {
			return models.ErrDuplicate
		}
	}
	a.ID = m.data.next("appointments")
	a.Date = DateOnly(a.Date)
	m.data.appointments[a.ID] = *a
	return nil
}

func (m *MemoryStore) GetAppointment(_ context.Context, id int) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.data.appointments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (m *MemoryStore) ListAppointments(_ context.Context, f models.AppointmentFilter) ([]models.AppointmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AppointmentRecord
	for _, a := range m.data.appointments {
		if matchesFilter(a, f) {
			out = append(out, m.appointmentRecord(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

func (m *MemoryStore) ListDoctorAppointments(_ context.Context, doctorID int, f models.AppointmentFilter) ([]models.DoctorAppointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f.DoctorID = doctorID
	var out []models.DoctorAppointment
	for _, a := range m.data.appointments {
		if !matchesFilter(a, f) {
			continue
		}
		r := models.DoctorAppointment{Appointment: a}
		if p, ok := m.data.patients[a.PatientID]; ok {
			r.PatientName = m.data.users[p.UserID].Name
			r.PatientGender = p.Gender
			r.PatientAge = models.CalculateAge(p.DOB)
			r.PatientBloodGroup = p.BloodGroup
			r.PatientAddress = p.Address
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (m *MemoryStore) SetAppointmentStatus(_ context.Context, id int, status models.AppointmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.data.appointments[id]
	if !ok {
		return models.ErrNotFound
	}
	a.Status = status
	m.data.appointments[id] = a
	return nil
}

func (m *MemoryStore) CountAppointments(_ context.Context, f models.AppointmentFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.data.appointments {
		if matchesFilter(a, f) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DailyAppointmentCounts(_ context.Context, doctorID int, from time.Time) ([]models.DailyCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[time.Time]int{}
	for _, a := range m.data.appointments {
		if a.DoctorID == doctorID && !a.Date.Before(DateOnly(from)) {
			counts[a.Date]++
		}
	}
	var out []models.DailyCount
	for d, n := range counts {
		out = append(out, models.DailyCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) SearchAppointments(_ context.Context, term string) ([]models.AppointmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AppointmentRecord
	for _, a := range m.data.appointments {
		r := m.appointmentRecord(a)
		if containsFold(r.AppointmentNumber, term) || containsFold(r.PatientName, term) ||
			containsFold(r.DoctorName, term) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) RecentAppointments(_ context.Context, limit int) ([]models.AppointmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AppointmentRecord
	for _, a := range m.data.appointments {
		out = append(out, m.appointmentRecord(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Treatments ---

func (m *MemoryStore) GetTreatmentByAppointment(_ context.Context, appointmentID int) (*models.Treatment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.data.treatments {
		if t.AppointmentID == appointmentID {
			t := t
			return &t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MemoryStore) UpsertTreatment(_ context.Context, t *models.Treatment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.TreatmentDate.IsZero() {
		t.TreatmentDate = time.Now()
	}
	for id, existing := range m.data.treatments {
		if existing.AppointmentID == t.AppointmentID {
			t.ID = id
			m.data.treatments[id] = *t
			return nil
		}
	}
	t.ID = m.data.next("treatments")
	m.data.treatments[t.ID] = *t
	return nil
}

func (m *MemoryStore) treatmentRecord(t models.Treatment) models.TreatmentRecord {
	r := models.TreatmentRecord{Treatment: t}
	if p, ok := m.data.patients[t.PatientID]; ok {
		r.PatientName = m.data.users[p.UserID].Name
	}
	if a, ok := m.data.appointments[t.AppointmentID]; ok {
		d := a.Date
		r.AppointmentDate = &d
	}
	return r
}

func (m *MemoryStore) ListDoctorTreatments(_ context.Context, doctorID int) ([]models.TreatmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TreatmentRecord
	for _, t := range m.data.treatments {
		if t.DoctorID == doctorID {
			out = append(out, m.treatmentRecord(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TreatmentDate.After(out[j].TreatmentDate) })
	return out, nil
}

func (m *MemoryStore) ListPatientTreatments(_ context.Context, patientID, doctorID int) ([]models.TreatmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TreatmentRecord
	for _, t := range m.data.treatments {
		if t.PatientID == patientID && t.DoctorID == doctorID {
			out = append(out, m.treatmentRecord(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TreatmentDate.After(out[j].TreatmentDate) })
	return out, nil
}

// --- Medical history ---

func (m *MemoryStore) GetMedicalHistory(_ context.Context, patientID int) (*models.MedicalHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.data.histories {
		if h.PatientID == patientID {
			h := h
			return &h, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MemoryStore) SaveMedicalHistory(_ context.Context, h *models.MedicalHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	for id, existing := range m.data.histories {
		if existing.PatientID == h.PatientID {
			h.ID = id
			h.CreatedAt = existing.CreatedAt
			m.data.histories[id] = *h
			return nil
		}
	}
	h.ID = m.data.next("histories")
	m.data.histories[h.ID] = *h
	return nil
}

// --- Availability ---

func (m *MemoryStore) GetAvailability(_ context.Context, doctorID int, date time.Time) (*models.DoctorAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := DateOnly(date)
	for _, av := range m.data.availability {
		if av.DoctorID == doctorID && av.Date.Equal(day) {
			av := av
			return &av, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MemoryStore) UpsertAvailability(_ context.Context, av *models.DoctorAvailability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	av.Date = DateOnly(av.Date)
	for id, existing := range m.data.availability {
		if existing.DoctorID == av.DoctorID && existing.Date.Equal(av.Date) {
			av.ID = id
			m.data.availability[id] = *av
			return nil
		}
	}
	av.ID = m.data.next("availability")
	m.data.availability[av.ID] = *av
	return nil
}

func (m *MemoryStore) MarkUnavailable(_ context.Context, doctorID int, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := DateOnly(date)
	for id, av := range m.data.availability {
		if av.DoctorID == doctorID && av.Date.Equal(day) {
			av.Available = false
			m.data.availability[id] = av
			return nil
		}
	}
	return nil
}

// --- Request logs ---

func (m *MemoryStore) SaveRequestLog(_ context.Context, l *models.RequestLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = m.data.next("logs")
	l.CreatedAt = time.Now()
	m.data.logs = append(m.data.logs, *l)
	return nil
}
